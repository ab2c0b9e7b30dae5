package tables

import "github.com/JonMunkholm/bulkload/internal/core"

func init() {
	registerCallReasons()
	registerCallTypes()
	registerUsers()
	registerCalls()
}

func registerCallReasons() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:           "call_reasons",
			TargetTable:    "call_reasons",
			RequiredFields: []string{"callReason", "id"},
			UniqueKey:      "id",
			ConflictKey:    []string{"id"},
			Columns:        []core.ColumnDef{id("id"), varchar("name", NameLength)},
		},
		Mapping: core.MappingSpec{
			Renames:   []core.Rename{{From: "callReason", To: "name"}},
			Coercions: coercions(ints("id"), []core.Coercion{name("name")}),
		},
		Group:  GroupCalls,
		Label:  "Call Reasons",
		Source: "callReason.xlsx",
		Order:  210,
	})
}

// calltype.xlsx has trailing blank rows; they are dropped instead of
// failing the entity.
func registerCallTypes() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:           "call_types",
			TargetTable:    "call_types",
			RequiredFields: []string{"calltype", "id"},
			UniqueKey:      "id",
			ConflictKey:    []string{"id"},
			DropNullFields: []string{"calltype"},
			Columns:        []core.ColumnDef{id("id"), varchar("name", NameLength)},
		},
		Mapping: core.MappingSpec{
			Renames:   []core.Rename{{From: "calltype", To: "name"}},
			Coercions: coercions(ints("id"), []core.Coercion{name("name")}),
		},
		Group:  GroupCalls,
		Label:  "Call Types",
		Source: "calltype.xlsx",
		Order:  220,
	})
}

// DefaultPassword is set on imported users; it must be changed on first login.
const DefaultPassword = "default_password_123"

func registerUsers() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:             "users",
			TargetTable:      "users",
			RequiredFields:   []string{"callRecipient", "id"},
			UniqueKey:        "id",
			ConflictKey:      []string{"id"},
			PreserveOnUpdate: []string{"password", "created_at"},
			Columns: []core.ColumnDef{
				id("id"),
				varchar("name", NameLength),
				varchar("username", NameLength),
				varchar("password", NameLength),
				intCol("company_id"),
				timestamp("created_at"),
				timestamp("updated_at"),
			},
		},
		Mapping: core.MappingSpec{
			Renames: []core.Rename{{From: "callRecipient", To: "name"}},
			Copies:  []core.Copy{{From: "name", To: "username"}},
			Defaults: []core.Default{
				{Field: "company_id", Value: DefaultCompanyID},
				{Field: "password", Value: DefaultPassword},
			},
			Coercions: coercions(
				ints("id", "company_id"),
				[]core.Coercion{name("name"), name("username")},
				stamped(),
			),
		},
		Group:  GroupCalls,
		Label:  "Users",
		Source: "user.xlsx",
		Order:  230,
	})
}

func registerCalls() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:             "calls",
			TargetTable:      "customercall",
			RequiredFields:   []string{"id", "Customer_ID", "created_at"},
			UniqueKey:        "id",
			ConflictKey:      []string{"id"},
			PreserveOnUpdate: []string{"created_at"},
			Columns: []core.ColumnDef{
				id("id"),
				intCol("company_id"),
				{Name: "customer_id", Type: core.ColumnBigInt, NotNull: true},
				intCol("call_type"),
				intCol("category_id"),
				text("description"),
				text("call_notes"),
				intCol("call_duration"),
				intCol("created_by"),
				timestamp("created_at"),
				timestamp("updated_at"),
			},
		},
		Mapping: core.MappingSpec{
			Renames: []core.Rename{
				{From: "Customer_ID", To: "customer_id"},
				{From: "calltype_ID", To: "call_type"},
				{From: "callReason_ID", To: "category_id"},
				{From: "notes", To: "call_notes"},
			},
			Defaults: auditDefaults(
				core.Default{Field: "call_type", Value: 0},
				core.Default{Field: "category_id", Value: 0},
				core.Default{Field: "description", Value: ""},
				core.Default{Field: "call_notes", Value: ""},
				core.Default{Field: "call_duration", Value: 0},
			),
			Coercions: coercions(
				ints("id", "company_id", "customer_id", "call_type", "category_id", "call_duration", "created_by"),
				dates(core.NullKeep, "created_at", "updated_at"),
			),
		},
		Group:  GroupCalls,
		Label:  "Calls",
		Source: "calls.xlsx",
		Order:  240,
	})
}
