package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// TESTS FOR ClassifyFragments
// =============================================================================

func TestClassifyFragments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fragments []string
		expected  ClusterLabel
	}{
		// ===== GOOD CASES =====
		{
			name:      "class definition",
			fragments: []string{"class Foo:", "    pass"},
			expected:  LabelClassDefinition,
		},
		{
			name:      "function definition",
			fragments: []string{"def handler(event):", "    return event"},
			expected:  LabelFunctionDefinition,
		},
		{
			name:      "import pattern",
			fragments: []string{"import os", "import sys"},
			expected:  LabelImportPattern,
		},
		{
			name:      "error handling",
			fragments: []string{"try:", "    risky()", "except ValueError:", "    pass"},
			expected:  LabelErrorHandling,
		},
		{
			name:      "loop pattern with while",
			fragments: []string{"while running:", "    tick()"},
			expected:  LabelLoopPattern,
		},
		{
			name:      "general code",
			fragments: []string{"x = 1", "y = x + 2"},
			expected:  LabelGeneralCodePattern,
		},

		// ===== PRECEDENCE =====
		{
			name:      "class wins over def",
			fragments: []string{"class Foo:", "    def bar(self):", "        pass"},
			expected:  LabelClassDefinition,
		},
		{
			name:      "def wins over import",
			fragments: []string{"import os", "def main():", "    pass"},
			expected:  LabelFunctionDefinition,
		},
		{
			name:      "try and except split across fragments still matches",
			fragments: []string{"try: risky()", "except Exception: pass"},
			expected:  LabelErrorHandling,
		},
		{
			name:      "keyword matching is case-insensitive",
			fragments: []string{"CLASS FOO:"},
			expected:  LabelClassDefinition,
		},

		// ===== EDGE CASES =====
		{
			name:      "empty group",
			fragments: nil,
			expected:  LabelGeneralCodePattern,
		},
		{
			name:      "single empty fragment",
			fragments: []string{""},
			expected:  LabelGeneralCodePattern,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ClassifyFragments(tt.fragments))
		})
	}
}

// =============================================================================
// TESTS FOR record constructors
// =============================================================================

func TestNewClassRecord(t *testing.T) {
	t.Parallel()

	rec := NewClassRecord("Foo", "app.py")

	assert.Equal(t, RecordClassDefinition, rec.Type)
	assert.Equal(t, "Foo", rec.Name)
	assert.Equal(t, "app.py", rec.File)
	assert.Equal(t, PatternClass, rec.PatternType)
	assert.Equal(t, PatternData{Name: "Foo"}, rec.Data)
	assert.Equal(t, 1, rec.Frequency)
}

func TestNewMethodRecord(t *testing.T) {
	t.Parallel()

	rec := NewMethodRecord("bar", "Foo", "app.py")

	assert.Equal(t, RecordMethodDefinition, rec.Type)
	assert.Equal(t, PatternMethod, rec.PatternType)
	assert.Equal(t, "bar", rec.Data.Name)
	assert.Equal(t, "Foo", rec.Data.Class)
}

func TestNewFunctionRecord(t *testing.T) {
	t.Parallel()

	t.Run("undecorated", func(t *testing.T) {
		t.Parallel()
		rec := NewFunctionRecord("baz", "app.py", false)
		assert.Equal(t, RecordFunctionDefinition, rec.Type)
		assert.Equal(t, PatternFunction, rec.PatternType)
		assert.Empty(t, rec.Data.Class)
	})

	t.Run("decorated", func(t *testing.T) {
		t.Parallel()
		rec := NewFunctionRecord("baz", "app.py", true)
		assert.Equal(t, RecordDecorator, rec.Type)
		assert.Equal(t, PatternDecorator, rec.PatternType)
	})
}
