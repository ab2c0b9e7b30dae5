package tables

import "github.com/JonMunkholm/bulkload/internal/core"

func init() {
	registerGovernorates()
	registerCities()
	registerCustomers()
	registerCustomerPhones()
}

func registerGovernorates() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:           "governorates",
			TargetTable:    "governorates",
			RequiredFields: []string{"governorate", "id"},
			UniqueKey:      "id",
			ConflictKey:    []string{"id"},
			Columns:        []core.ColumnDef{id("id"), varchar("name", NameLength)},
		},
		Mapping: core.MappingSpec{
			Renames:   []core.Rename{{From: "governorate", To: "name"}},
			Coercions: coercions(ints("id"), []core.Coercion{name("name")}),
		},
		Group:  GroupCustomers,
		Label:  "Governorates",
		Source: "governorate.xlsx",
		Order:  10,
	})
}

func registerCities() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:           "cities",
			TargetTable:    "cities",
			RequiredFields: []string{"areas", "id", "id_governorates"},
			UniqueKey:      "id",
			ConflictKey:    []string{"id"},
			Columns:        []core.ColumnDef{id("id"), varchar("name", NameLength), intCol("governorate_id")},
		},
		Mapping: core.MappingSpec{
			Renames: []core.Rename{
				{From: "areas", To: "name"},
				{From: "id_governorates", To: "governorate_id"},
			},
			Coercions: coercions(ints("id", "governorate_id"), []core.Coercion{name("name")}),
		},
		Group:  GroupCustomers,
		Label:  "Cities",
		Source: "city_id.xlsx",
		Order:  20,
	})
}

func registerCustomers() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:             "customers",
			TargetTable:      "customers",
			RequiredFields:   []string{"id", "cusotmerName"},
			UniqueKey:        "id",
			ConflictKey:      []string{"id"},
			PreserveOnUpdate: []string{"created_at"},
			Columns: []core.ColumnDef{
				id("id"),
				intCol("company_id"),
				varchar("name", NameLength),
				// the column name is misspelled in the CRM schema
				intCol("governomate_id"),
				intCol("city_id"),
				text("address"),
				text("notes"),
				intCol("created_by"),
				timestamp("created_at"),
				timestamp("updated_at"),
			},
		},
		Mapping: core.MappingSpec{
			Renames: []core.Rename{
				{From: "cusotmerName", To: "name"},
				{From: "id_governorates", To: "governomate_id"},
				{From: "id_city", To: "city_id"},
				{From: "adress", To: "address"},
			},
			Defaults: auditDefaults(
				core.Default{Field: "governomate_id", Value: 0},
				core.Default{Field: "city_id", Value: 0},
			),
			Coercions: coercions(
				ints("id", "company_id", "governomate_id", "city_id", "created_by"),
				[]core.Coercion{name("name")},
				dates(core.NullKeep, "created_at", "updated_at"),
			),
		},
		Group:  GroupCustomers,
		Label:  "Customers",
		Source: "customers.xlsx",
		Order:  30,
	})
}

func registerCustomerPhones() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:             "customer_phones",
			TargetTable:      "customer_phones",
			RequiredFields:   []string{"customer_id", "mobilenum"},
			ConflictKey:      []string{"customer_id", "phone"},
			PreserveOnUpdate: preserved,
			Columns: []core.ColumnDef{
				id("customer_id"),
				intCol("company_id"),
				{Name: "phone", Type: core.ColumnVarchar, Length: 20, NotNull: true},
				intCol("phone_type"),
				intCol("created_by"),
				timestamp("created_at"),
				timestamp("updated_at"),
			},
		},
		Mapping: core.MappingSpec{
			Renames:  []core.Rename{{From: "mobilenum", To: "phone"}},
			Defaults: auditDefaults(core.Default{Field: "phone_type", Value: 0}),
			Coercions: coercions(
				ints("customer_id", "company_id", "phone_type", "created_by"),
				[]core.Coercion{{Field: "phone", Kind: core.CoerceString, MaxLength: 20, LengthFromSchema: true}},
				stamped(),
			),
		},
		Group:  GroupCustomers,
		Label:  "Customer Phones",
		Source: "C_Mobile_id.xlsx",
		Order:  40,
	})
}
