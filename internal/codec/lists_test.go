package codec_test

import (
	"testing"

	"github.com/dom/crusadetome/internal/codec"
	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty input", input: "", want: []string{""}},
		{name: "simple", input: "a,b,c", want: []string{"a", "b", "c"}},
		{name: "empty entry kept", input: "a,,b", want: []string{"a", "", "b"}},
		{name: "no trimming", input: "Infantry, Imperium", want: []string{"Infantry", " Imperium"}},
		{name: "trailing comma", input: "Deep Strike,", want: []string{"Deep Strike", ""}},
		{name: "duplicates kept", input: "Grenades,Grenades", want: []string{"Grenades", "Grenades"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codec.SplitList(tt.input))
		})
	}
}

func TestJoinList(t *testing.T) {
	assert.Equal(t, "", codec.JoinList(nil))
	assert.Equal(t, "", codec.JoinList([]string{}))
	assert.Equal(t, "", codec.JoinList([]string{""}))
	assert.Equal(t, "a,,b", codec.JoinList([]string{"a", "", "b"}))
}

func TestSplitJoin_RoundTrip(t *testing.T) {
	lists := [][]string{
		{""},
		{"Infantry"},
		{"Infantry", "Imperium", "Tacticus"},
		{"", "", ""},
		{" leading", "trailing "},
	}
	for _, xs := range lists {
		assert.Equal(t, xs, codec.SplitList(codec.JoinList(xs)))
	}

	// Commas inside an element cannot be told apart from separators.
	lossy := []string{"Anti-Infantry 4+, Devastating Wounds"}
	assert.Equal(t, []string{"Anti-Infantry 4+", " Devastating Wounds"}, codec.SplitList(codec.JoinList(lossy)))

	// The empty list comes back as a single empty entry.
	assert.Equal(t, []string{""}, codec.SplitList(codec.JoinList([]string{})))
}
