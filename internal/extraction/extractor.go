// Package extraction walks parsed Python syntax trees and emits structural
// pattern records for classes, methods, functions, and decorated functions.
package extraction

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/saksham-jain177/github-review-agent/pkg/models"
)

// Node kinds consumed from the Python grammar. Everything else is walked
// through without producing records.
const (
	nodeClassDefinition     = "class_definition"
	nodeFunctionDefinition  = "function_definition"
	nodeDecoratedDefinition = "decorated_definition"
	nodeBlock               = "block"
	nodeIdentifier          = "identifier"
)

// SourceFile pairs a parsed syntax tree with the source it was parsed from.
// Tree-sitter nodes hold byte offsets only, so the source bytes travel with
// the tree.
type SourceFile struct {
	Path   string
	Source []byte
	Tree   *sitter.Tree
}

// Close releases the underlying parse tree.
func (f SourceFile) Close() {
	if f.Tree != nil {
		f.Tree.Close()
	}
}

// Parser wraps a tree-sitter parser configured for Python.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new Python parser.
func NewParser() *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	return &Parser{parser: parser}
}

// ParseSource parses Python source into a SourceFile. Parse failures
// propagate unmodified; callers are expected to fail fast on malformed input.
func (p *Parser) ParseSource(ctx context.Context, path string, source []byte) (SourceFile, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return SourceFile{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return SourceFile{Path: path, Source: source, Tree: tree}, nil
}

// ParseFile reads and parses a Python file from disk.
func (p *Parser) ParseFile(ctx context.Context, path string) (SourceFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("read file: %w", err)
	}

	return p.ParseSource(ctx, path, content)
}

// Extractor emits structural pattern records from parsed source files.
type Extractor struct{}

// NewExtractor creates a new structural pattern extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract walks every file's tree in order and returns the flat sequence of
// pattern records: one class record per class definition, one method record
// per function defined directly in a class body, and one function or
// decorator record per module-level function.
func (e *Extractor) Extract(files []SourceFile) []models.PatternRecord {
	records := make([]models.PatternRecord, 0)
	for _, f := range files {
		if f.Tree == nil {
			continue
		}
		e.walkNode(f.Tree.RootNode(), f.Source, f.Path, &records)
	}
	return records
}

// walkNode dispatches over the closed set of node kinds. Only module-level
// functions and class-body methods produce function records; function bodies
// are still scanned for class definitions, which are recorded wherever they
// appear.
func (e *Extractor) walkNode(node *sitter.Node, source []byte, filePath string, records *[]models.PatternRecord) {
	switch node.Type() {
	case nodeClassDefinition:
		e.extractClass(node, source, filePath, records)
		return

	case nodeFunctionDefinition:
		if name := definitionName(node, source); name != "" {
			*records = append(*records, models.NewFunctionRecord(name, filePath, false))
		}
		e.walkNestedClasses(node, source, filePath, records)
		return

	case nodeDecoratedDefinition:
		e.extractDecorated(node, source, filePath, records)
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		e.walkNode(node.Child(i), source, filePath, records)
	}
}

// extractClass emits a class record plus one method record per function
// defined directly in the class body. Decorated methods still count as
// methods; nested classes are extracted in their own scope, so a function
// following the class is never misattributed as a method.
func (e *Extractor) extractClass(node *sitter.Node, source []byte, filePath string, records *[]models.PatternRecord) {
	className := definitionName(node, source)
	if className == "" {
		return
	}

	*records = append(*records, models.NewClassRecord(className, filePath))

	block := childOfType(node, nodeBlock)
	if block == nil {
		return
	}

	for i := 0; i < int(block.ChildCount()); i++ {
		child := block.Child(i)
		switch child.Type() {
		case nodeFunctionDefinition:
			if name := definitionName(child, source); name != "" {
				*records = append(*records, models.NewMethodRecord(name, className, filePath))
			}
			e.walkNestedClasses(child, source, filePath, records)

		case nodeDecoratedDefinition:
			inner := decoratedInner(child)
			if inner == nil {
				continue
			}
			switch inner.Type() {
			case nodeFunctionDefinition:
				if name := definitionName(inner, source); name != "" {
					*records = append(*records, models.NewMethodRecord(name, className, filePath))
				}
				e.walkNestedClasses(inner, source, filePath, records)
			case nodeClassDefinition:
				e.extractClass(inner, source, filePath, records)
			}

		case nodeClassDefinition:
			e.extractClass(child, source, filePath, records)
		}
	}
}

// extractDecorated handles a module-level decorated definition. A decorated
// function is tagged as a decorator pattern; a decorated class is treated as
// a plain class.
func (e *Extractor) extractDecorated(node *sitter.Node, source []byte, filePath string, records *[]models.PatternRecord) {
	inner := decoratedInner(node)
	if inner == nil {
		return
	}

	switch inner.Type() {
	case nodeFunctionDefinition:
		if name := definitionName(inner, source); name != "" {
			*records = append(*records, models.NewFunctionRecord(name, filePath, true))
		}
		e.walkNestedClasses(inner, source, filePath, records)
	case nodeClassDefinition:
		e.extractClass(inner, source, filePath, records)
	}
}

// walkNestedClasses scans a function body for class definitions. Every class
// definition yields a record, even inside a function; nested functions are
// traversed but never recorded.
func (e *Extractor) walkNestedClasses(node *sitter.Node, source []byte, filePath string, records *[]models.PatternRecord) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case nodeClassDefinition:
			e.extractClass(child, source, filePath, records)
		case nodeDecoratedDefinition:
			inner := decoratedInner(child)
			if inner == nil {
				continue
			}
			if inner.Type() == nodeClassDefinition {
				e.extractClass(inner, source, filePath, records)
			} else {
				e.walkNestedClasses(inner, source, filePath, records)
			}
		default:
			e.walkNestedClasses(child, source, filePath, records)
		}
	}
}

// decoratedInner returns the definition wrapped by a decorated_definition.
func decoratedInner(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeFunctionDefinition || child.Type() == nodeClassDefinition {
			return child
		}
	}
	return nil
}

// definitionName returns the identifier of a class or function definition.
func definitionName(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeIdentifier {
			return child.Content(source)
		}
	}
	return ""
}

// childOfType returns the first direct child with the given node type.
func childOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}
