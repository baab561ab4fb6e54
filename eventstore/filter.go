package eventstore

import (
	"slices"
	"strings"
)

type FilterEventTypeString = string
type FilterKeyString = string
type FilterValString = string

/***** Filter *****/

// Filter selects the events of one consistency boundary.
// Items are OR-ed; inside an item, event types are OR-ed and AND-ed with the predicates.
type Filter struct {
	items []FilterItem
}

func (f Filter) Items() []FilterItem {
	return f.items
}

// MatchesAnyEvent reports whether the filter places no restriction on events.
func (f Filter) MatchesAnyEvent() bool {
	for _, item := range f.items {
		if len(item.eventTypes) > 0 || len(item.predicates) > 0 {
			return false
		}
	}

	return true
}

// String renders the filter in a compact, deterministic form for logs and lock keys.
func (f Filter) String() string {
	parts := make([]string, 0, len(f.items))

	for _, item := range f.items {
		predicates := make([]string, 0, len(item.predicates))
		for _, p := range item.predicates {
			predicates = append(predicates, p.key+"="+p.val)
		}

		joiner := "|"
		if item.allPredicatesMustMatch {
			joiner = "&"
		}

		parts = append(parts, "("+strings.Join(item.eventTypes, "|")+")["+strings.Join(predicates, joiner)+"]")
	}

	return strings.Join(parts, " OR ")
}

/***** FilterItem *****/

type FilterItem struct {
	eventTypes             []FilterEventTypeString
	predicates             []FilterPredicate
	allPredicatesMustMatch bool
}

func (fi FilterItem) EventTypes() []FilterEventTypeString {
	return fi.eventTypes
}

func (fi FilterItem) Predicates() []FilterPredicate {
	return fi.predicates
}

func (fi FilterItem) AllPredicatesMustMatch() bool {
	return fi.allPredicatesMustMatch
}

/***** FilterPredicate *****/

// FilterPredicate matches events whose JSON payload has a top-level string field key with value val.
type FilterPredicate struct {
	key FilterKeyString
	val FilterValString
}

func P(key FilterKeyString, val FilterValString) FilterPredicate {
	return FilterPredicate{key: key, val: val}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

/***** FilterBuilder *****/

// FilterBuilder builds a storage-agnostic event filter which engines translate into their own query language.
// Only combinations that are useful for a consistency boundary can be expressed:
//
//   - empty filter
//   - (eventType OR eventType...)
//   - (predicate OR predicate...) / (predicate AND predicate...)
//   - ((eventType OR eventType...) AND (predicate OR predicate...))
//   - ((eventType OR eventType...) AND (predicate AND predicate...))
//   - any of the above OR-ed together -> multiple FilterItem(s)
type FilterBuilder interface {
	// Matching starts a new FilterItem.
	Matching() EmptyFilterItemBuilder

	// MatchingAnyEvent directly creates an empty Filter.
	MatchingAnyEvent() Filter
}

type EmptyFilterItemBuilder interface {
	// AnyEventTypeOf adds one or multiple EventTypes to the current FilterItem.
	AnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterItemBuilderLackingPredicates

	// AnyPredicateOf adds FilterPredicate(s) of which ANY must match.
	AnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes

	// AllPredicatesOf adds FilterPredicate(s) of which ALL must match.
	AllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes
}

type FilterItemBuilderLackingPredicates interface {
	AndAnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder
	AndAllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder
	OrMatching() EmptyFilterItemBuilder
	Finalize() Filter
}

type FilterItemBuilderLackingEventTypes interface {
	AndAnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) CompletedFilterItemBuilder
	OrMatching() EmptyFilterItemBuilder
	Finalize() Filter
}

type CompletedFilterItemBuilder interface {
	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	// Finalize returns the Filter.
	Finalize() Filter
}

// filterBuilder implements all the interfaces of FilterBuilder
type filterBuilder struct {
	filter            Filter
	currentFilterItem FilterItem
}

// BuildEventFilter creates a FilterBuilder which must eventually be finalized with Finalize() or MatchingAnyEvent().
func BuildEventFilter() FilterBuilder {
	return filterBuilder{}
}

func (fb filterBuilder) Matching() EmptyFilterItemBuilder {
	fb.currentFilterItem = FilterItem{}

	return fb
}

// AnyEventTypeOf adds EventTypes to the current FilterItem, removing empty and duplicate ones and sorting them.
func (fb filterBuilder) AnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) FilterItemBuilderLackingPredicates {

	fb.currentFilterItem.eventTypes = fb.sanitizeEventTypes(
		append(slices.Clone(fb.currentFilterItem.eventTypes), append([]FilterEventTypeString{eventType}, eventTypes...)...),
	)

	return fb
}

func (fb filterBuilder) AndAnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) CompletedFilterItemBuilder {

	return fb.AnyEventTypeOf(eventType, eventTypes...)
}

func (fb filterBuilder) sanitizeEventTypes(eventTypes []FilterEventTypeString) []FilterEventTypeString {
	eventTypes = slices.DeleteFunc(eventTypes, func(e FilterEventTypeString) bool { return e == "" })
	slices.Sort(eventTypes)
	eventTypes = slices.Compact(eventTypes)

	return slices.Clip(eventTypes)
}

// AnyPredicateOf adds predicates to the current FilterItem, removing partial and duplicate ones and sorting them.
func (fb filterBuilder) AnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) FilterItemBuilderLackingEventTypes {

	fb.currentFilterItem.predicates = fb.sanitizePredicates(
		append(slices.Clone(fb.currentFilterItem.predicates), append([]FilterPredicate{predicate}, predicates...)...),
	)

	return fb
}

func (fb filterBuilder) AndAnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	return fb.AnyPredicateOf(predicate, predicates...)
}

func (fb filterBuilder) AllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) FilterItemBuilderLackingEventTypes {

	fb.currentFilterItem.allPredicatesMustMatch = true

	return fb.AnyPredicateOf(predicate, predicates...)
}

func (fb filterBuilder) AndAllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	return fb.AllPredicatesOf(predicate, predicates...)
}

func (fb filterBuilder) sanitizePredicates(predicates []FilterPredicate) []FilterPredicate {
	predicates = slices.DeleteFunc(predicates, func(p FilterPredicate) bool { return p.key == "" || p.val == "" })
	slices.SortFunc(predicates, func(a, b FilterPredicate) int {
		if c := strings.Compare(a.key, b.key); c != 0 {
			return c
		}

		return strings.Compare(a.val, b.val)
	})
	predicates = slices.Compact(predicates)

	return slices.Clip(predicates)
}

// OrMatching finalizes the current FilterItem and starts a new one.
func (fb filterBuilder) OrMatching() EmptyFilterItemBuilder {
	fb.filter.items = append(slices.Clone(fb.filter.items), fb.currentFilterItem)
	fb.currentFilterItem = FilterItem{}

	return fb
}

func (fb filterBuilder) MatchingAnyEvent() Filter {
	return Filter{}
}

func (fb filterBuilder) Finalize() Filter {
	fb.filter.items = append(slices.Clone(fb.filter.items), fb.currentFilterItem)

	return fb.filter
}
