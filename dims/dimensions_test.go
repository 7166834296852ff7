package dims_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signalcraft/transactional-signals-go/dims"
)

func Test_BuildDimensions_ExposesItsFields(t *testing.T) {
	dimensions := dims.BuildDimensions(5, 10)

	assert.Equal(t, 5, dimensions.Length())
	assert.Equal(t, 10, dimensions.Width())
}

func Test_Fields_YieldsLengthThenWidth(t *testing.T) {
	// setup
	dimensions := dims.BuildDimensions(5, 10)

	// act
	var names []string
	var values []int
	for name, value := range dimensions.Fields() {
		names = append(names, name)
		values = append(values, value)
	}

	// assert
	assert.Equal(t, []string{dims.FieldNameLength, dims.FieldNameWidth}, names)
	assert.Equal(t, []int{5, 10}, values)
}

func Test_Fields_IsRestartable(t *testing.T) {
	// setup
	dimensions := dims.BuildDimensions(5, 10)

	countTraversal := func() int {
		count := 0
		for range dimensions.Fields() {
			count++
		}
		return count
	}

	// act + assert
	assert.Equal(t, 2, countTraversal())
	assert.Equal(t, 2, countTraversal(), "a second traversal should start fresh at the first field")
}

func Test_Fields_SupportsEarlyTermination(t *testing.T) {
	// setup
	dimensions := dims.BuildDimensions(5, 10)

	// act
	var first string
	for name := range dimensions.Fields() {
		first = name
		break
	}

	// assert
	assert.Equal(t, dims.FieldNameLength, first)
}

func Test_Entries_YieldsSingleEntryMappings(t *testing.T) {
	// setup
	dimensions := dims.BuildDimensions(5, 10)

	// act
	var entries []map[string]int
	for entry := range dimensions.Entries() {
		entries = append(entries, entry)
	}

	// assert
	expected := []map[string]int{
		{dims.FieldNameLength: 5},
		{dims.FieldNameWidth: 10},
	}
	assert.Equal(t, expected, entries)
}
