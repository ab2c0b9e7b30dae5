package tables_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/bulkload/internal/core"
	"github.com/JonMunkholm/bulkload/internal/core/tables"
)

func TestBuiltinDefinitionsAreValid(t *testing.T) {
	defs := core.All()
	require.NotEmpty(t, defs)

	for _, def := range defs {
		t.Run(def.Name(), func(t *testing.T) {
			assert.NoError(t, core.ValidateDefinition(def))
			_, err := core.NewMapper(def.Mapping, def.Profile)
			assert.NoError(t, err)
		})
	}
}

func TestGroupsRunInDependencyOrder(t *testing.T) {
	assert.Equal(t, []string{
		tables.GroupCustomers,
		tables.GroupTickets,
		tables.GroupCalls,
		tables.GroupRequests,
	}, core.Groups())
}

func TestParentsSortBeforeChildren(t *testing.T) {
	pos := make(map[string]int)
	for i, def := range core.All() {
		pos[def.Name()] = i
	}

	pairs := [][2]string{
		{"governorates", "cities"},
		{"cities", "customers"},
		{"customers", "customer_phones"},
		{"customers", "tickets"},
		{"ticket_categories", "tickets"},
		{"tickets", "ticket_calls"},
		{"users", "calls"},
		{"tickets", "ticket_items"},
		{"ticket_items", "ticket_item_maintenance"},
		{"product_info", "ticket_item_change_same"},
	}
	for _, p := range pairs {
		assert.Less(t, pos[p[0]], pos[p[1]], "%s must import before %s", p[0], p[1])
	}
}

func TestUsersGetUsernameAndPassword(t *testing.T) {
	def, ok := core.Get("users")
	require.True(t, ok)

	m, err := core.NewMapper(def.Mapping, def.Profile)
	require.NoError(t, err)

	out := m.MapRecord(core.RecordOf("id", 7.0, "callRecipient", "Mona"))
	assert.Equal(t, []string{"id", "name", "username", "password", "company_id", "created_at", "updated_at"}, out.Fields())

	username, _ := out.Get("username")
	password, _ := out.Get("password")
	assert.Equal(t, "Mona", username)
	assert.Equal(t, tables.DefaultPassword, password)
}

func TestItemDetailColumnsFollowSuffix(t *testing.T) {
	def, ok := core.Get("ticket_item_maintenance")
	require.True(t, ok)

	m, err := core.NewMapper(def.Mapping, def.Profile)
	require.NoError(t, err)

	out := m.MapRecord(core.RecordOf(
		"id", 12.0,
		"cost3", "150.5",
		"choice4Accetp", 1.0,
		"pulled3", nil,
		"maintanancedescription", "replace motor",
	))

	id, _ := out.Get("ticket_item_id")
	cost, _ := out.Get("maintenance_cost")
	approval, _ := out.Get("client_approval")
	pulled, _ := out.Get("pulled")
	steps, _ := out.Get("maintenance_steps")
	assert.Equal(t, int64(12), id)
	assert.Equal(t, 150.5, cost)
	assert.Equal(t, int64(1), approval)
	assert.Equal(t, int64(0), pulled)
	assert.Equal(t, "replace motor", steps)
}
