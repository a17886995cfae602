package pgsql

import (
	"testing"
	"time"

	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBuilderScalarFilters(t *testing.T) {
	q := portsrepo.Query{EstablishmentID: "est-1"}.
		Where("status", portsrepo.OpIn, []string{"SCHEDULED", "CONFIRMED"}).
		Where("name", portsrepo.OpEqual, "Cut").
		Where("durationMinutes", portsrepo.OpGreater, 30)

	b, err := newQueryBuilder("services", q)
	require.NoError(t, err)

	assert.Equal(t,
		`collection = $1 AND establishment_id = $2 AND (data->>'status') = ANY($3::text[]) AND `+
			`(data->>'name') COLLATE "C" = $4::text AND `+
			`(CASE WHEN jsonb_typeof(data->'durationMinutes') = 'number' THEN (data->>'durationMinutes')::numeric END) > $5::numeric`,
		b.where())
	assert.Equal(t, []any{"services", "est-1", []string{"SCHEDULED", "CONFIRMED"}, "Cut", "30"}, b.args)
}

func TestQueryBuilderTypedFilters(t *testing.T) {
	at := time.Date(2025, 3, 4, 10, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	q := portsrepo.Query{}.
		Where("startTime", portsrepo.OpLess, at).
		Where("price", portsrepo.OpGreaterEqual, decimal.RequireFromString("49.90")).
		Where("isActive", portsrepo.OpNotEqual, false).
		Where("serviceIDs", portsrepo.OpArrayContains, "svc-1")

	b, err := newQueryBuilder("appointments", q)
	require.NoError(t, err)

	assert.Equal(t,
		`collection = $1 AND (data->>'startTime')::timestamptz < $2::timestamptz AND `+
			`(data->>'price')::numeric >= $3::numeric AND `+
			`(CASE WHEN jsonb_typeof(data->'isActive') = 'boolean' THEN (data->>'isActive')::boolean END) <> $4::boolean AND `+
			`(data->'serviceIDs') @> $5::jsonb`,
		b.where())
	require.Len(t, b.args, 5)
	assert.Equal(t, at.UTC(), b.args[1])
	assert.Equal(t, "49.9", b.args[2])
	assert.Equal(t, false, b.args[3])
	assert.Equal(t, `["svc-1"]`, b.args[4])
}

func TestQueryBuilderRejectsBadInput(t *testing.T) {
	_, err := newQueryBuilder("clients", portsrepo.Query{}.Where("name'); DROP TABLE documents;--", portsrepo.OpEqual, "x"))
	assert.Error(t, err)

	_, err = newQueryBuilder("clients", portsrepo.Query{}.Where("name", portsrepo.Operator("LIKE"), "x"))
	assert.Error(t, err)

	_, err = newQueryBuilder("clients", portsrepo.Query{}.Where("name", portsrepo.OpIn, "not-a-slice"))
	assert.Error(t, err)

	_, err = newQueryBuilder("clients", portsrepo.Query{}.Where("meta", portsrepo.OpEqual, struct{}{}))
	assert.Error(t, err)
}

func TestOrderByAndPaging(t *testing.T) {
	assert.Equal(t, "ORDER BY id", orderBy(portsrepo.Query{}))
	assert.Contains(t, orderBy(portsrepo.Query{OrderBy: "startTime", Descending: true}), "(data->>'startTime') COLLATE \"C\" DESC, id ASC")
	assert.Equal(t, " LIMIT 10 OFFSET 20", limitOffset(portsrepo.Query{Limit: 10, Offset: 20}))
	assert.Equal(t, "", limitOffset(portsrepo.Query{}))
}
