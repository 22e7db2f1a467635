package marketplace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery_Strict(t *testing.T) {
	got := BuildQuery(Query{Series: "Amazing  Spider-Man", Issue: "300", Year: 1988, Strict: true})
	assert.True(t, strings.HasPrefix(got, "Amazing Spider-Man #300 1988 comic -lot"))
	assert.Contains(t, got, "-reprint")
	assert.Contains(t, got, "-variant")
}

func TestBuildQuery_Relaxed(t *testing.T) {
	got := BuildQuery(Query{Series: "Amazing Spider-Man", Issue: "#300", Year: 1988})
	assert.True(t, strings.HasPrefix(got, "Amazing Spider-Man #300 -lot"))
	assert.NotContains(t, got, "1988")
	assert.NotContains(t, got, " comic ")
}

func TestBuildQuery_StrictWithoutYear(t *testing.T) {
	got := BuildQuery(Query{Series: "X-Men", Issue: "1", Strict: true})
	assert.True(t, strings.HasPrefix(got, "X-Men #1 comic -lot"))
}

func TestBuildQuery_EveryExclusion(t *testing.T) {
	got := BuildQuery(Query{Series: "Saga", Issue: "1"})
	for _, term := range exclusionTerms {
		assert.Contains(t, strings.Fields(got), "-"+term)
	}
}
