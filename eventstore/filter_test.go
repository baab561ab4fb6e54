package eventstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Agihtaws/OpenShelf-sub001/eventstore"
)

func Test_FilterBuilder_MatchingAnyEvent_CreatesEmptyFilter(t *testing.T) {
	// act
	filter := eventstore.BuildEventFilter().MatchingAnyEvent()

	// assert
	assert.Empty(t, filter.Items())
	assert.True(t, filter.MatchesAnyEvent())
}

func Test_FilterBuilder_EventTypesAndPredicates(t *testing.T) {
	// act
	filter := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("HoldPlaced", "BookCheckedOut", "HoldPlaced", "").
		AndAnyPredicateOf(eventstore.P("BookID", "b-1")).
		Finalize()

	// assert
	assert.Len(t, filter.Items(), 1)
	item := filter.Items()[0]
	assert.Equal(t, []string{"BookCheckedOut", "HoldPlaced"}, item.EventTypes())
	assert.Equal(t, []eventstore.FilterPredicate{eventstore.P("BookID", "b-1")}, item.Predicates())
	assert.False(t, item.AllPredicatesMustMatch())
	assert.False(t, filter.MatchesAnyEvent())
}

func Test_FilterBuilder_AllPredicatesOf_SortsAndDropsPartialPredicates(t *testing.T) {
	// act
	filter := eventstore.BuildEventFilter().
		Matching().
		AllPredicatesOf(
			eventstore.P("PatronID", "p-1"),
			eventstore.P("BookID", "b-1"),
			eventstore.P("", "ignored"),
			eventstore.P("LoanID", ""),
			eventstore.P("BookID", "b-1"),
		).
		AndAnyEventTypeOf("HoldPlaced").
		Finalize()

	// assert
	item := filter.Items()[0]
	assert.True(t, item.AllPredicatesMustMatch())
	assert.Equal(t,
		[]eventstore.FilterPredicate{eventstore.P("BookID", "b-1"), eventstore.P("PatronID", "p-1")},
		item.Predicates(),
	)
	assert.Equal(t, []string{"HoldPlaced"}, item.EventTypes())
}

func Test_FilterBuilder_OrMatching_CreatesMultipleItems(t *testing.T) {
	// act
	filter := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("LoanReturned").
		AndAnyPredicateOf(eventstore.P("LoanID", "l-1")).
		OrMatching().
		AnyPredicateOf(eventstore.P("PatronID", "p-1"), eventstore.P("PatronID", "p-2")).
		Finalize()

	// assert
	assert.Len(t, filter.Items(), 2)
	assert.Equal(t, []string{"LoanReturned"}, filter.Items()[0].EventTypes())
	assert.Empty(t, filter.Items()[1].EventTypes())
	assert.Len(t, filter.Items()[1].Predicates(), 2)
}

func Test_FilterBuilder_BuilderValuesDoNotShareState(t *testing.T) {
	// arrange
	base := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("HoldPlaced")

	// act
	first := base.AndAnyPredicateOf(eventstore.P("BookID", "b-1")).Finalize()
	second := base.AndAnyPredicateOf(eventstore.P("BookID", "b-2")).Finalize()

	// assert
	assert.Equal(t, "b-1", first.Items()[0].Predicates()[0].Val())
	assert.Equal(t, "b-2", second.Items()[0].Predicates()[0].Val())
}

func Test_Filter_String_IsDeterministic(t *testing.T) {
	// arrange
	build := func(types ...string) eventstore.Filter {
		return eventstore.BuildEventFilter().
			Matching().
			AnyEventTypeOf(types[0], types[1:]...).
			AndAllPredicatesOf(eventstore.P("BookID", "b-1"), eventstore.P("PatronID", "p-1")).
			Finalize()
	}

	// act
	a := build("HoldPlaced", "HoldCanceled").String()
	b := build("HoldCanceled", "HoldPlaced").String()

	// assert
	assert.Equal(t, a, b)
	assert.Equal(t, "(HoldCanceled|HoldPlaced)[BookID=b-1&PatronID=p-1]", a)
}
