package tables

import "github.com/JonMunkholm/bulkload/internal/core"

func init() {
	registerRequestReasons()
	registerProductInfo()
	registerTicketItems()

	registerItemDetail(itemDetail{
		name:   "ticket_item_maintenance",
		source: "TI_Maintenance.xlsx",
		label:  "Ticket Item Maintenance",
		suffix: "3",
		choice: "4",
		cost:   "maintenance_cost",
		extra: []core.ColumnDef{
			text("maintenance_steps"),
		},
		renames: []core.Rename{{From: "maintanancedescription", To: "maintenance_steps"}},
		defaults: []core.Default{
			{Field: "maintenance_steps", Value: ""},
		},
		order: 340,
	})
	registerItemDetail(itemDetail{
		name:   "ticket_item_change_same",
		source: "TI_Change_Same.xlsx",
		label:  "Ticket Item Same-Model Replacement",
		suffix: "1",
		choice: "2",
		cost:   "cost",
		extra: []core.ColumnDef{
			{Name: "product_id", Type: core.ColumnBigInt},
			varchar("product_size", 50),
		},
		coercions: []core.Coercion{
			{Field: "product_id", Kind: core.CoerceInt},
			{Field: "product_size", Kind: core.CoerceString, MaxLength: 50},
		},
		order: 350,
	})
	registerItemDetail(itemDetail{
		name:   "ticket_item_change_another",
		source: "TI_Change_Another.xlsx",
		label:  "Ticket Item Other-Model Replacement",
		suffix: "2",
		choice: "3",
		cost:   "cost",
		extra: []core.ColumnDef{
			{Name: "product_id", Type: core.ColumnBigInt},
			varchar("product_size", 50),
		},
		// The export has no size column for replacements with another model.
		defaults:  []core.Default{{Field: "product_size", Value: "Standard"}},
		coercions: []core.Coercion{
			{Field: "product_id", Kind: core.CoerceInt},
			{Field: "product_size", Kind: core.CoerceString, MaxLength: 50},
		},
		order: 360,
	})
}

func registerRequestReasons() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:             "request_reasons",
			TargetTable:      "request_reasons",
			RequiredFields:   []string{"id"},
			UniqueKey:        "id",
			ConflictKey:      []string{"id"},
			PreserveOnUpdate: preserved,
			Columns:          withAudit(id("id"), varchar("name", NameLength)),
		},
		Mapping: core.MappingSpec{
			Renames:   []core.Rename{{From: "reqreqson", To: "name"}},
			Defaults:  auditDefaults(core.Default{Field: "name", Value: "Unknown"}),
			Coercions: coercions(ints("id", "company_id", "created_by"), []core.Coercion{name("name")}, stamped()),
		},
		Group:  GroupRequests,
		Label:  "Request Reasons",
		Source: "reqreqson.xlsx",
		Order:  310,
	})
}

func registerProductInfo() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:             "product_info",
			TargetTable:      "product_info",
			RequiredFields:   []string{"id"},
			UniqueKey:        "id",
			ConflictKey:      []string{"id"},
			PreserveOnUpdate: preserved,
			Columns:          withAudit(id("id"), varchar("product_name", NameLength)),
		},
		Mapping: core.MappingSpec{
			Renames:   []core.Rename{{From: "pfodcut.ProductName", To: "product_name"}},
			Defaults:  auditDefaults(core.Default{Field: "product_name", Value: "Unknown Product"}),
			Coercions: coercions(ints("id", "company_id", "created_by"), []core.Coercion{name("product_name")}, stamped()),
		},
		Group:  GroupRequests,
		Label:  "Products",
		Source: "ProductName.xlsx",
		Order:  320,
	})
}

func registerTicketItems() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:             "ticket_items",
			TargetTable:      "ticket_items",
			RequiredFields:   []string{"id"},
			UniqueKey:        "id",
			ConflictKey:      []string{"id"},
			PreserveOnUpdate: []string{"created_at"},
			Columns: []core.ColumnDef{
				id("id"),
				intCol("company_id"),
				{Name: "ticket_id", Type: core.ColumnBigInt},
				{Name: "product_id", Type: core.ColumnBigInt},
				varchar("product_size", 50),
				intCol("quantity"),
				timestamp("purchase_date"),
				varchar("purchase_location", NameLength),
				intCol("request_reason_id"),
				text("request_reason_detail"),
				intCol("inspected"),
				timestamp("inspection_date"),
				text("inspection_result"),
				intCol("client_approval"),
				intCol("created_by"),
				timestamp("created_at"),
				timestamp("updated_at"),
			},
		},
		Mapping: core.MappingSpec{
			Renames: []core.Rename{
				{From: "ticket_ID", To: "ticket_id"},
				{From: "inspected_date", To: "inspection_date"},
				{From: "inspected_result", To: "inspection_result"},
				{From: "create_by", To: "created_by"},
				{From: "create_at", To: "created_at"},
				{From: "update_at", To: "updated_at"},
			},
			Defaults: auditDefaults(
				core.Default{Field: "product_size", Value: ""},
				core.Default{Field: "purchase_location", Value: ""},
				core.Default{Field: "request_reason_detail", Value: ""},
				core.Default{Field: "inspection_result", Value: ""},
			),
			Coercions: coercions(
				ints("id", "company_id", "ticket_id", "product_id", "quantity",
					"request_reason_id", "inspected", "client_approval", "created_by"),
				[]core.Coercion{
					{Field: "product_size", Kind: core.CoerceString, MaxLength: 50},
					name("purchase_location"),
				},
				dates(core.NullKeep, "purchase_date", "inspection_date"),
				stamped(),
			),
		},
		Group:  GroupRequests,
		Label:  "Ticket Items",
		Source: "ticket_items.xlsx",
		Order:  330,
	})
}

// itemDetail describes one of the per-item resolution sheets. They share a
// layout; the export distinguishes them by numeric suffixes on the
// decision columns (cost3, pulledDate3, choice4Accetp, ...).
type itemDetail struct {
	name, source, label string
	suffix, choice      string
	cost                string // target column for cost<suffix>

	extra     []core.ColumnDef
	renames   []core.Rename
	defaults  []core.Default
	coercions []core.Coercion
	order     int
}

func registerItemDetail(d itemDetail) {
	cols := append([]core.ColumnDef{id("ticket_item_id")}, d.extra...)
	cols = append(cols,
		core.ColumnDef{Name: d.cost, Type: core.ColumnFloat},
		intCol("client_approval"),
		text("refusal_reason"),
		intCol("pulled"),
		timestamp("pull_date"),
		intCol("delivered"),
		timestamp("delivery_date"),
		intCol("created_by"),
		intCol("company_id"),
		timestamp("created_at"),
		timestamp("updated_at"),
	)

	renames := append([]core.Rename{
		{From: "id", To: "ticket_item_id"},
		{From: "cost" + d.suffix, To: d.cost},
		{From: "choice" + d.choice + "Accetp", To: "client_approval"},
		{From: "choice" + d.choice + "refusereason", To: "refusal_reason"},
		{From: "pulled" + d.suffix, To: "pulled"},
		{From: "pulledDate" + d.suffix, To: "pull_date"},
		{From: "deleverd" + d.suffix, To: "delivered"},
		{From: "deleverdDate" + d.suffix, To: "delivery_date"},
		{From: "create_by", To: "created_by"},
		{From: "create_at", To: "created_at"},
		{From: "update_at", To: "updated_at"},
	}, d.renames...)

	defaults := auditDefaults(append([]core.Default{
		{Field: d.cost, Value: 0.0},
		{Field: "client_approval", Value: 0},
		{Field: "refusal_reason", Value: ""},
		{Field: "pulled", Value: 0},
		{Field: "delivered", Value: 0},
	}, d.defaults...)...)

	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:             d.name,
			TargetTable:      d.name,
			RequiredFields:   []string{"id"},
			UniqueKey:        "id",
			ConflictKey:      []string{"ticket_item_id"},
			PreserveOnUpdate: []string{"created_at"},
			Columns:          cols,
		},
		Mapping: core.MappingSpec{
			Renames:  renames,
			Defaults: defaults,
			Coercions: coercions(
				ints("ticket_item_id", "client_approval", "pulled", "delivered", "created_by", "company_id"),
				[]core.Coercion{{Field: d.cost, Kind: core.CoerceFloat, Fallback: 0.0}},
				dates(core.NullKeep, "pull_date", "delivery_date"),
				stamped(),
				d.coercions,
			),
		},
		Group:  GroupRequests,
		Label:  d.label,
		Source: d.source,
		Order:  d.order,
	})
}
