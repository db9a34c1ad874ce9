package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrsync/internal/source"
)

func TestBagLimitSortAndDedup(t *testing.T) {
	bag := NewBag(3)
	r := BagReporter{Bag: bag}

	ReportWarning(r, AnnDeprecated, source.Span{Start: 10, End: 12}, "late").Fixable(true).Emit()
	ReportError(r, EngConflict, source.Span{Start: 1, End: 2}, "early").Emit()
	ReportWarning(r, AnnDeprecated, source.Span{Start: 10, End: 12}, "late").Fixable(true).Emit()
	require.False(t, bag.Add(New(SevInfo, AnnInfo, source.Span{}, "dropped")))

	bag.Dedup()
	bag.Sort()
	require.Equal(t, 2, bag.Len())
	assert.Equal(t, "early", bag.Items()[0].Message)
	assert.True(t, bag.HasErrors())
	assert.Equal(t, 1, bag.CountFixable())
}

func TestDedupReporterForwardsOnce(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	d := New(SevWarning, AnnRedundant, source.Span{Start: 4, End: 9}, "x")
	r.Report(d)
	r.Report(d)
	r.Report(d.WithNote(source.Span{}, "different notes do not matter"))
	assert.Equal(t, 1, bag.Len())
}

func TestCodeNaming(t *testing.T) {
	assert.Equal(t, "ANN2001", AnnDeprecated.ID())
	assert.Equal(t, "DeprecatedAnnotation", AnnDeprecated.Slug())
	assert.Equal(t, "ENG3003", EngConflict.ID())
	assert.Equal(t, "Unknown", Code(2999).Slug())
}
