package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTagName(t *testing.T) {
	assert.True(t, ValidateTagName("snp"))
	assert.True(t, ValidateTagName("rna-seq"))
	assert.True(t, ValidateTagName("c++"))
	assert.True(t, ValidateTagName("r"))

	assert.False(t, ValidateTagName(""))
	assert.False(t, ValidateTagName("UPPERCASE"))
	assert.False(t, ValidateTagName("has spaces"))
	assert.False(t, ValidateTagName("trailing-"))
	assert.False(t, ValidateTagName("-leading"))
}

func TestParseTagString(t *testing.T) {
	assert.Equal(t, []string{"snp", "codon", "microarray"}, ParseTagString("snp codon microarray"))
	assert.Equal(t, []string{"a", "b"}, ParseTagString("  a\t b  "))
	assert.Nil(t, ParseTagString(""))
	assert.Nil(t, ParseTagString("   "))

	// duplicates keep their first position
	assert.Equal(t, []string{"a", "b"}, ParseTagString("a b a"))
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "snp codon", TagString([]string{"snp", "codon"}))
	assert.Equal(t, "", TagString(nil))
}
