// Package models contains domain models for code pattern analysis.
package models

import "strings"

// RecordType identifies the structural construct a pattern record describes.
type RecordType string

const (
	// RecordClassDefinition is a class definition found in a source file.
	RecordClassDefinition RecordType = "class_definition"
	// RecordMethodDefinition is a function defined directly in a class body.
	RecordMethodDefinition RecordType = "method_definition"
	// RecordFunctionDefinition is an undecorated module-level function.
	RecordFunctionDefinition RecordType = "function_definition"
	// RecordDecorator is a module-level function with a non-empty decorator list.
	RecordDecorator RecordType = "decorator"
)

// PatternType is the short category tag carried alongside the record type.
type PatternType string

const (
	PatternClass     PatternType = "class"
	PatternMethod    PatternType = "method"
	PatternFunction  PatternType = "function"
	PatternDecorator PatternType = "decorator"
)

// PatternData holds the names attached to a pattern record.
// Class is set only for method records, naming the enclosing class.
type PatternData struct {
	Name  string `json:"name"`
	Class string `json:"class,omitempty"`
}

// PatternRecord is one structural pattern emitted during extraction.
// Records are immutable after creation and carry no identity beyond their fields.
type PatternRecord struct {
	Type        RecordType  `json:"type"`
	Name        string      `json:"name"`
	File        string      `json:"file"`
	PatternType PatternType `json:"pattern_type"`
	Data        PatternData `json:"data"`
	Frequency   int         `json:"frequency"`
}

// ClusterLabel is the heuristic category assigned to a group of similar fragments.
type ClusterLabel string

const (
	LabelClassDefinition    ClusterLabel = "class_definition"
	LabelFunctionDefinition ClusterLabel = "function_definition"
	LabelImportPattern      ClusterLabel = "import_pattern"
	LabelErrorHandling      ClusterLabel = "error_handling"
	LabelLoopPattern        ClusterLabel = "loop_pattern"
	LabelGeneralCodePattern ClusterLabel = "general_code_pattern"
)

// MaxClusterExamples caps how many representative fragments a summary retains.
const MaxClusterExamples = 3

// ClusterSummary describes one group of semantically similar code fragments.
type ClusterSummary struct {
	ClusterID   int          `json:"cluster_id"`
	Frequency   int          `json:"frequency"`
	Examples    []string     `json:"examples"`
	PatternType ClusterLabel `json:"pattern_type"`
}

// ClassifyFragments assigns a heuristic label to a group of similar code
// fragments by scanning their concatenated, lowercased text for keywords.
// Precedence is fixed: class beats def beats import beats try/except beats loops.
func ClassifyFragments(fragments []string) ClusterLabel {
	combined := strings.ToLower(strings.Join(fragments, " "))

	switch {
	case strings.Contains(combined, "class"):
		return LabelClassDefinition
	case strings.Contains(combined, "def"):
		return LabelFunctionDefinition
	case strings.Contains(combined, "import"):
		return LabelImportPattern
	case strings.Contains(combined, "try") && strings.Contains(combined, "except"):
		return LabelErrorHandling
	case strings.Contains(combined, "for") || strings.Contains(combined, "while"):
		return LabelLoopPattern
	default:
		return LabelGeneralCodePattern
	}
}

// NewClassRecord creates a pattern record for a class definition.
func NewClassRecord(name, file string) PatternRecord {
	return PatternRecord{
		Type:        RecordClassDefinition,
		Name:        name,
		File:        file,
		PatternType: PatternClass,
		Data:        PatternData{Name: name},
		Frequency:   1,
	}
}

// NewMethodRecord creates a pattern record for a method inside className.
func NewMethodRecord(name, className, file string) PatternRecord {
	return PatternRecord{
		Type:        RecordMethodDefinition,
		Name:        name,
		File:        file,
		PatternType: PatternMethod,
		Data:        PatternData{Name: name, Class: className},
		Frequency:   1,
	}
}

// NewFunctionRecord creates a pattern record for a module-level function.
// Decorated functions are tagged as decorator patterns rather than plain functions.
func NewFunctionRecord(name, file string, decorated bool) PatternRecord {
	rec := PatternRecord{
		Type:        RecordFunctionDefinition,
		Name:        name,
		File:        file,
		PatternType: PatternFunction,
		Data:        PatternData{Name: name},
		Frequency:   1,
	}
	if decorated {
		rec.Type = RecordDecorator
		rec.PatternType = PatternDecorator
	}
	return rec
}
