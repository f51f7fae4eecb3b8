package version

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestUpdateCommentReplacesExisting(t *testing.T) {
	lines := []string{
		"#!/usr/bin/env nu",
		"",
		"# nushell-compatible-with: 0.95.0",
		"",
		"ls | where size > 1kb",
	}
	got := UpdateComment(lines, "0.97.0")
	want := []string{
		"#!/usr/bin/env nu",
		"",
		"# nushell-compatible-with: 0.97.0",
		"",
		"ls | where size > 1kb",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateCommentInsertsAfterShebang(t *testing.T) {
	lines := []string{
		"#!/usr/bin/env nu",
		"ls",
	}
	got := UpdateComment(lines, "0.97.0")
	want := []string{
		"#!/usr/bin/env nu",
		"",
		"# nushell-compatible-with: 0.97.0",
		"",
		"ls",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateCommentInsertsAtTopWithoutShebang(t *testing.T) {
	lines := []string{"ls"}
	got := UpdateComment(lines, "0.97.0")
	want := []string{
		"# nushell-compatible-with: 0.97.0",
		"",
		"ls",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateCommentKeepsExistingBlankAfterShebang(t *testing.T) {
	lines := []string{
		"#!/usr/bin/env nu",
		"",
		"ls",
	}
	got := UpdateComment(lines, "0.97.0")
	want := []string{
		"#!/usr/bin/env nu",
		"",
		"# nushell-compatible-with: 0.97.0",
		"",
		"ls",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateCommentEmptyFile(t *testing.T) {
	got := UpdateComment(nil, "0.97.0")
	assert.Equal(t, []string{"# nushell-compatible-with: 0.97.0"}, got)
}

func TestUpdateCommentDoesNotMutateInput(t *testing.T) {
	lines := []string{"ls"}
	UpdateComment(lines, "0.97.0")
	assert.Equal(t, []string{"ls"}, lines)
}
