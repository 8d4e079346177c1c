package repo

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gympulse/internal/validators"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		number, size int
		want         Page
	}{
		{0, 0, Page{1, 10}},
		{-3, 10, Page{1, 10}},
		{2, 3, Page{2, 5}},
		{4, 500, Page{4, 50}},
		{7, 25, Page{7, 25}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewPage(tt.number, tt.size))
	}
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 3, pageCount(25, 10))
	assert.Equal(t, 1, pageCount(0, 10))
	assert.Equal(t, 2, pageCount(20, 10))
}

func TestNewSort(t *testing.T) {
	assert.Equal(t, Sort{Key: "name", Asc: true}, NewSort(" name ", "ASC"))
	assert.Equal(t, Sort{Key: "name"}, NewSort("name", "sideways"))

	ob := NewSort("password", "asc").orderBy(memberSorts)
	assert.Equal(t, "created_at", ob.Columns[0].Column.Name)
	assert.True(t, ob.Columns[0].Desc)
}

func TestSearch_EscapesWildcards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.member(t, f.tenantA, "100% Fit")
	f.member(t, f.tenantA, "100 Fit")
	f.member(t, f.tenantA, "a_b")
	f.member(t, f.tenantA, "axb")

	got, err := f.members.List(ctx, f.tenantA, MemberFilter{Q: "100%"}, Sort{}, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "100% Fit", got.Rows[0].Name)

	got, err = f.members.List(ctx, f.tenantA, MemberFilter{Q: "A_B"}, Sort{}, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "a_b", got.Rows[0].Name)
}

func TestList_PaginationBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := f.members.Create(ctx, f.tenantA, f.actor, validators.MemberInput{Name: "Member " + string(rune('A'+i))})
		require.NoError(t, err)
	}

	first, err := f.members.List(ctx, f.tenantA, MemberFilter{}, NewSort("name", "asc"), NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 25, first.Total)
	assert.Equal(t, 3, first.PageCount)
	assert.Len(t, first.Rows, 10)
	assert.Equal(t, "Member A", first.Rows[0].Name)

	last, err := f.members.List(ctx, f.tenantA, MemberFilter{}, NewSort("name", "asc"), NewPage(3, 10))
	require.NoError(t, err)
	assert.Len(t, last.Rows, 5)

	beyond, err := f.members.List(ctx, f.tenantA, MemberFilter{}, Sort{}, NewPage(99, 10))
	require.NoError(t, err)
	assert.Empty(t, beyond.Rows)
	assert.NotNil(t, beyond.Rows)
	assert.EqualValues(t, 25, beyond.Total)
	assert.Equal(t, 3, beyond.PageCount)

	huge, err := f.members.List(ctx, f.tenantA, MemberFilter{}, Sort{}, NewPage(math.MaxInt/10+2, 10))
	require.NoError(t, err)
	assert.Empty(t, huge.Rows, "a page number whose offset overflows is still past the end")
	assert.EqualValues(t, 25, huge.Total)
	assert.Equal(t, math.MaxInt/10+2, huge.Page)
}
