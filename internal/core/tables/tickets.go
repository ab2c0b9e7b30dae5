package tables

import "github.com/JonMunkholm/bulkload/internal/core"

func init() {
	registerLookup(lookup{
		name:   "call_categories",
		table:  "call_categories",
		source: "callReason_tickets.xlsx",
		label:  "Call Categories",
		from:   "callReason",
		idFrom: "callReason_id",
		group:  GroupTickets,
		order:  110,
	})
	registerLookup(lookup{
		name:   "ticket_categories",
		table:  "ticket_categories",
		source: "TicketType.xlsx",
		label:  "Ticket Categories",
		from:   "TicketType",
		idFrom: "TicketType_ID",
		group:  GroupTickets,
		order:  120,
	})
	registerTickets()
	registerTicketCalls()
}

// lookup describes a small id/name table stamped with the audit columns.
type lookup struct {
	name, table, source, label string
	from, idFrom               string // source columns for name and id
	group                      string
	order                      int
}

func registerLookup(l lookup) {
	renames := []core.Rename{{From: l.from, To: "name"}}
	if l.idFrom != "id" {
		renames = append(renames, core.Rename{From: l.idFrom, To: "id"})
	}

	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:             l.name,
			TargetTable:      l.table,
			RequiredFields:   []string{l.from, l.idFrom},
			UniqueKey:        l.idFrom,
			ConflictKey:      []string{"id"},
			PreserveOnUpdate: preserved,
			Columns:          withAudit(id("id"), varchar("name", NameLength)),
		},
		Mapping: core.MappingSpec{
			Renames:   renames,
			Defaults:  auditDefaults(),
			Coercions: coercions(ints("id", "company_id", "created_by"), []core.Coercion{name("name")}, stamped()),
		},
		Group:  l.group,
		Label:  l.label,
		Source: l.source,
		Order:  l.order,
	})
}

func registerTickets() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:             "tickets",
			TargetTable:      "tickets",
			RequiredFields:   []string{"id", "Customer_ID", "created_at"},
			UniqueKey:        "id",
			ConflictKey:      []string{"id"},
			PreserveOnUpdate: preserved,
			Columns: []core.ColumnDef{
				id("id"),
				intCol("company_id"),
				{Name: "customer_id", Type: core.ColumnBigInt, NotNull: true},
				intCol("ticket_cat_id"),
				text("description"),
				intCol("status"),
				intCol("priority"),
				intCol("created_by"),
				timestamp("created_at"),
				timestamp("closed_at"),
				timestamp("updated_at"),
				text("closing_notes"),
				intCol("closed_by"),
			},
		},
		Mapping: core.MappingSpec{
			Renames: []core.Rename{{From: "Customer_ID", To: "customer_id"}},
			Defaults: auditDefaults(
				core.Default{Field: "ticket_cat_id", Value: 1},
				core.Default{Field: "status", Value: 0},
				core.Default{Field: "priority", Value: 0},
				core.Default{Field: "description", Value: ""},
				core.Default{Field: "closing_notes", Value: nil},
				core.Default{Field: "closed_by", Value: nil},
			),
			Coercions: coercions(
				ints("id", "company_id", "customer_id", "ticket_cat_id", "status", "priority", "created_by", "closed_by"),
				dates(core.NullKeep, "created_at", "closed_at", "updated_at"),
			),
		},
		Group:  GroupTickets,
		Label:  "Tickets",
		Source: "tickets.xlsx",
		Order:  130,
	})
}

// ticket_calls.xlsx is known to repeat call ids; the first row wins.
func registerTicketCalls() {
	core.Register(core.EntityDefinition{
		Profile: core.EntityProfile{
			Name:             "ticket_calls",
			TargetTable:      "ticketcall",
			RequiredFields:   []string{"id", "ticket_ID", "datetime"},
			UniqueKey:        "id",
			ConflictKey:      []string{"id"},
			DedupeKeepFirst:  true,
			PreserveOnUpdate: []string{"created_at"},
			Columns: []core.ColumnDef{
				id("id"),
				intCol("company_id"),
				{Name: "ticket_id", Type: core.ColumnBigInt, NotNull: true},
				intCol("call_type"),
				intCol("call_cat_id"),
				text("description"),
				text("call_notes"),
				intCol("call_duration"),
				intCol("created_by"),
				timestamp("created_at"),
			},
		},
		Mapping: core.MappingSpec{
			Renames: []core.Rename{
				{From: "ticket_ID", To: "ticket_id"},
				{From: "calltype_id", To: "call_type"},
				{From: "callReason_id", To: "call_cat_id"},
				{From: "callresult", To: "description"},
				{From: "datetime", To: "created_at"},
				{From: "callRecipient_id", To: "created_by"},
				{From: "notes", To: "call_notes"},
			},
			Defaults: auditDefaults(
				core.Default{Field: "call_type", Value: 0},
				core.Default{Field: "call_cat_id", Value: 1},
				core.Default{Field: "description", Value: ""},
				core.Default{Field: "call_notes", Value: ""},
				core.Default{Field: "call_duration", Value: 0},
			),
			Coercions: coercions(
				ints("id", "company_id", "ticket_id", "call_type", "call_cat_id", "call_duration", "created_by"),
				dates(core.NullKeep, "created_at"),
			),
		},
		Group:  GroupTickets,
		Label:  "Ticket Calls",
		Source: "ticket_calls.xlsx",
		Order:  140,
	})
}
