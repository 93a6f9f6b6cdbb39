package scouting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialValues(t *testing.T) {
	fields := seasonFields()
	fields = append(fields,
		FieldDefinition{ID: "d", Label: "Moved", Kind: KindCheckbox},
		FieldDefinition{ID: "e", Label: "Pickup", Kind: KindMultiSelect, Options: []string{"Floor", "Source"}, Multiple: true},
	)
	values := InitialValues(fields)

	assert.True(t, values["Auto Points"].Equal(Number(0)))
	assert.True(t, values["Climb"].Equal(Text("")))
	assert.True(t, values["Notes"].Equal(Text("")))
	assert.True(t, values["Moved"].Equal(Bool(false)))
	assert.Equal(t, ValueList, values["Pickup"].Kind())
	assert.Empty(t, values["Pickup"].Options())
}

func TestIncrementDecrement(t *testing.T) {
	attrs := Attributes{"Auto Points": Number(0)}

	attrs = Increment(attrs, "Auto Points")
	attrs = Increment(attrs, "Auto Points")
	assert.True(t, attrs["Auto Points"].Equal(Number(2)))

	attrs = Decrement(attrs, "Auto Points")
	attrs = Decrement(attrs, "Auto Points")
	attrs = Decrement(attrs, "Auto Points")
	assert.True(t, attrs["Auto Points"].Equal(Number(0)), "counters floor at zero")

	fresh := Increment(Attributes{}, "Teleop")
	assert.True(t, fresh["Teleop"].Equal(Number(1)))
}

func TestBuildRecord_Validation(t *testing.T) {
	base := Identity{Purpose: PurposeMatch, Season: 2025, EventCode: "2025miket", MatchKey: "qm1", TeamNumber: 254}

	cases := []struct {
		name   string
		mutate func(*Identity)
		field  string
	}{
		{"no event", func(i *Identity) { i.EventCode = " " }, "event_code"},
		{"no match key", func(i *Identity) { i.MatchKey = "" }, "match_key"},
		{"no team", func(i *Identity) { i.TeamNumber = 0 }, "team_number"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ident := base
			c.mutate(&ident)
			_, err := BuildRecord(ident, Attributes{})
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, c.field, ve.Field)
		})
	}

	pit := base
	pit.Purpose = PurposePit
	pit.MatchKey = ""
	pit.Photos = []string{"https://storage.googleapis.com/b/p.jpg"}
	rec, err := BuildRecord(pit, nil)
	require.NoError(t, err)
	assert.Empty(t, rec.MatchKey)
	assert.Equal(t, pit.Photos, rec.Photos)
	assert.NotNil(t, rec.Attributes)
}

func TestBuildRecord_KeepsUnknownAttributes(t *testing.T) {
	ident := Identity{Season: 2025, EventCode: "2025miket", MatchKey: "qm1", TeamNumber: 254}
	rec, err := BuildRecord(ident, Attributes{"OldField": Number(9)})
	require.NoError(t, err)
	assert.Equal(t, PurposeMatch, rec.Purpose)
	assert.True(t, rec.Attributes["OldField"].Equal(Number(9)))
}

func TestCollector_Submit(t *testing.T) {
	c := NewCollector(PurposeMatch, 2025, "2025miket", seasonFields())
	c.MatchKey = "qm3"
	c.TeamNumber = 1678
	c.Values = Increment(c.Values, "Auto Points")
	c = c.WithValues(Attributes{"Climb": Text("Deep")})

	var stored *Record
	next, rec, err := c.Submit(Identity{SubmitterID: "u1", SubmitterName: "Ada"}, func(r *Record) error {
		r.ID = "generated"
		stored = r
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "generated", rec.ID)
	assert.Equal(t, 1678, rec.TeamNumber)
	assert.Equal(t, "qm3", rec.MatchKey)
	assert.Equal(t, "u1", rec.SubmitterID)
	assert.True(t, rec.Attributes["Auto Points"].Equal(Number(1)))
	assert.True(t, rec.Attributes["Climb"].Equal(Text("Deep")))

	assert.Equal(t, "2025miket", next.EventCode)
	assert.Equal(t, 2025, next.Season)
	assert.Empty(t, next.MatchKey)
	assert.Zero(t, next.TeamNumber)
	assert.True(t, next.Values["Auto Points"].Equal(Number(0)))
}

func TestCollector_SubmitFailureKeepsState(t *testing.T) {
	c := NewCollector(PurposeMatch, 2025, "2025miket", seasonFields())
	c.MatchKey = "qm3"
	c.TeamNumber = 1678
	c.Values = Increment(c.Values, "Auto Points")

	boom := errors.New("unavailable")
	next, _, err := c.Submit(Identity{}, func(*Record) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, c, next)

	c.TeamNumber = 0
	called := false
	_, _, err = c.Submit(Identity{}, func(*Record) error { called = true; return nil })
	assert.True(t, IsValidation(err))
	assert.False(t, called, "nothing is written for an invalid record")
}
