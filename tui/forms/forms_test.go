package forms

import (
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
)

func TestSplitPaths(t *testing.T) {
	assert.Equal(t, []string{"a.mp4", "dir/b.mov"}, SplitPaths(" a.mp4 ,, dir/b.mov ,"))
	assert.Nil(t, SplitPaths("  "))
}

func TestFormsStartNormal(t *testing.T) {
	var ok bool
	var path string
	for _, f := range []*huh.Form{
		NewDeleteClipForm("a.mp4", &ok),
		NewDiscardForm("Open", &ok),
		NewPathForm(PathExport, &path),
		NewGoToForm(&path),
	} {
		assert.Equal(t, huh.StateNormal, f.State)
	}
}
