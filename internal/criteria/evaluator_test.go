package criteria

import (
	"encoding/json"
	"testing"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customer(age int, job, marital, contact string) *domain.Customer {
	return &domain.Customer{Age: age, Job: job, Marital: marital, Contact: contact, CreditDefault: "no"}
}

func TestMatches_EmptyCriteriaMatchesEverything(t *testing.T) {
	records := []*domain.Customer{
		customer(20, "student", "single", "cellular"),
		customer(70, "retired", "married", "telephone"),
		{},
	}
	for _, r := range records {
		assert.True(t, Matches(Criteria{}, r))
		assert.True(t, Matches(MustParse(`{}`), r))
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	rs := []domain.Customer{
		*customer(20, "student", "single", "cellular"),
		*customer(70, "retired", "married", "telephone"),
		*customer(45, "admin.", "married", "cellular"),
	}
	assert.Len(t, Filter(MustParse(`{}`), rs), 3)

	got := Filter(MustParse(`{"contact":"cellular"}`), rs)
	require.Len(t, got, 2)
	assert.Equal(t, 20, got[0].Age)
	assert.Equal(t, 45, got[1].Age)

	assert.Empty(t, Filter(MustParse(`{"age":{"gt":99}}`), rs))
}

func TestMatches_Equality(t *testing.T) {
	r := customer(34, "admin.", "married", "cellular")

	assert.True(t, Matches(MustParse(`{"job":"admin."}`), r))
	assert.True(t, Matches(MustParse(`{"age":34}`), r))
	assert.False(t, Matches(MustParse(`{"job":"student"}`), r))
	// strict: a number never equals its string rendering
	assert.False(t, Matches(MustParse(`{"age":"34"}`), r))
	// absent field
	assert.False(t, Matches(MustParse(`{"favourite_colour":"blue"}`), r))
	// explicit equals object
	assert.True(t, Matches(MustParse(`{"contact":{"equals":"cellular"}}`), r))
}

func TestMatches_Membership(t *testing.T) {
	r := customer(34, "technician", "single", "cellular")
	assert.True(t, Matches(MustParse(`{"job":{"in":["admin.","technician"]}}`), r))
	assert.False(t, Matches(MustParse(`{"job":{"in":["student"]}}`), r))
	assert.False(t, Matches(MustParse(`{"job":{"in":[]}}`), r))
}

func TestMatches_RangeCombination(t *testing.T) {
	c := MustParse(`{"age":{"gte":30,"lt":40}}`)
	for age := 25; age <= 45; age++ {
		want := age >= 30 && age < 40
		assert.Equal(t, want, Matches(c, customer(age, "x", "x", "x")), "age %d", age)
	}

	assert.True(t, Matches(MustParse(`{"age":{"gt":29.5}}`), customer(30, "", "", "")))
	assert.False(t, Matches(MustParse(`{"age":{"lte":29}}`), customer(30, "", "", "")))
	// strings order lexicographically
	assert.True(t, Matches(MustParse(`{"job":{"gte":"a","lt":"c"}}`), customer(1, "blue-collar", "", "")))
	// mixed kinds never compare
	assert.False(t, Matches(MustParse(`{"age":{"gte":"30"}}`), customer(35, "", "", "")))
}

func TestMatches_OrSemantics(t *testing.T) {
	c := MustParse(`{"OR":[{"job":"student"},{"marital":"single"}]}`)
	assert.True(t, Matches(c, customer(20, "student", "married", "")))
	assert.True(t, Matches(c, customer(40, "admin.", "single", "")))
	assert.True(t, Matches(c, customer(20, "student", "single", "")))
	assert.False(t, Matches(c, customer(40, "admin.", "married", "")))

	// OR is AND-ed with the rest
	c = MustParse(`{"contact":"cellular","OR":[{"job":"student"},{"age":{"gte":60}}]}`)
	assert.True(t, Matches(c, customer(65, "retired", "", "cellular")))
	assert.False(t, Matches(c, customer(65, "retired", "", "telephone")))

	// each alternative must match all of its fields
	c = MustParse(`{"OR":[{"job":"student","marital":"single"}]}`)
	assert.False(t, Matches(c, customer(20, "student", "married", "")))

	// an empty OR has no alternative to satisfy
	assert.False(t, Matches(MustParse(`{"OR":[]}`), customer(1, "", "", "")))
}

func TestMatches_MalformedFailsClosed(t *testing.T) {
	r := customer(34, "admin.", "married", "cellular")
	malformed := []string{
		`{"age":{"between":[1,2]}}`,
		`{"age":{"in":5}}`,
		`{"age":{"in":[{"x":1}]}}`,
		`{"age":{}}`,
		`{"age":null}`,
		`{"age":[34]}`,
		`{"age":{"gte":true}}`,
		`{"age":{"in":[34],"gte":1}}`,
		`{"OR":"student"}`,
		`{"OR":[5]}`,
	}
	for _, s := range malformed {
		c, err := Parse(json.RawMessage(s))
		require.NoError(t, err, s)
		assert.False(t, Matches(c, r), s)
		assert.True(t, c.HasInvalid(), s)
	}

	// an invalid alternative does not poison the valid ones
	c := MustParse(`{"OR":[5,{"job":"admin."}]}`)
	assert.True(t, Matches(c, r))
}

func TestParse_TopLevelMustBeObject(t *testing.T) {
	_, err := Parse(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
	_, err = Parse(json.RawMessage(`"job"`))
	assert.Error(t, err)

	c, err := Parse(nil)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	c, err = Parse(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCriteria_JSONRoundTrip(t *testing.T) {
	in := `{"OR":[{"job":"student"}],"age":{"gte":30,"lt":40},"contact":"cellular","job":{"in":["admin.","student"]},"x":{"bogus":1}}`
	c := MustParse(in)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))

	var back Criteria
	require.NoError(t, json.Unmarshal(out, &back))
	r := customer(35, "student", "single", "cellular")
	assert.Equal(t, Matches(c, r), Matches(back, r))
}

func TestConstructors(t *testing.T) {
	c := Criteria{Fields: map[string]Constraint{
		"contact": Eq("cellular"),
		"job":     OneOf("student", "admin."),
		"age":     Range{Gte: Num(30)},
	}}
	assert.True(t, Matches(c, customer(31, "student", "", "cellular")))
	assert.False(t, Matches(c, customer(29, "student", "", "cellular")))
	assert.IsType(t, Invalid{}, Eq([]int{1}))
	assert.IsType(t, Invalid{}, OneOf("a", nil))
}
