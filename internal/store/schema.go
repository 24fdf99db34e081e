package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Every event table shares the id/sequence/timestamp prefix so that the
// log can be merged across tables by sequence.
func eventColumns(extra ...*schema.Column) []*schema.Column {
	cols := []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
	return append(cols, extra...)
}

var (
	sessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "bank_version", Type: field.TypeString},
		{Name: "questions", Type: field.TypeInt, Default: 0},
		{Name: "theta", Type: field.TypeFloat64, Default: 0},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "updated_unix", Type: field.TypeInt64},
		{Name: "data", Type: field.TypeString, Size: 1 << 24},
	}
	sessionsTable = &schema.Table{
		Name:       "sessions",
		Columns:    sessionsColumns,
		PrimaryKey: []*schema.Column{sessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "sessions_user_id", Columns: []*schema.Column{sessionsColumns[1]}},
			{Name: "sessions_status_updated", Columns: []*schema.Column{sessionsColumns[2], sessionsColumns[7]}},
		},
	}

	sessionEventsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "user_id", Type: field.TypeString},
		&schema.Column{Name: "action", Type: field.TypeString},
		&schema.Column{Name: "status", Type: field.TypeString},
		&schema.Column{Name: "stop_reason", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "bank_version", Type: field.TypeString, Default: ""},
	)
	sessionEventsTable = &schema.Table{
		Name:       "session_events",
		Columns:    sessionEventsColumns,
		PrimaryKey: []*schema.Column{sessionEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "session_events_session_id", Columns: []*schema.Column{sessionEventsColumns[3]}},
		},
	}

	responseEventsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "user_id", Type: field.TypeString},
		&schema.Column{Name: "item_id", Type: field.TypeString},
		&schema.Column{Name: "section", Type: field.TypeString},
		&schema.Column{Name: "correct", Type: field.TypeBool},
		&schema.Column{Name: "response_time_ms", Type: field.TypeInt64},
		&schema.Column{Name: "hint_used", Type: field.TypeBool},
		&schema.Column{Name: "theta_before", Type: field.TypeFloat64},
		&schema.Column{Name: "theta_after", Type: field.TypeFloat64},
		&schema.Column{Name: "standard_error", Type: field.TypeFloat64},
	)
	responseEventsTable = &schema.Table{
		Name:       "response_events",
		Columns:    responseEventsColumns,
		PrimaryKey: []*schema.Column{responseEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "response_events_session_id", Columns: []*schema.Column{responseEventsColumns[3]}},
			{Name: "response_events_item_id", Columns: []*schema.Column{responseEventsColumns[5]}},
		},
	}

	scoreEventsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "user_id", Type: field.TypeString},
		&schema.Column{Name: "theta", Type: field.TypeFloat64},
		&schema.Column{Name: "standard_error", Type: field.TypeFloat64},
		&schema.Column{Name: "iq", Type: field.TypeInt},
		&schema.Column{Name: "eiq", Type: field.TypeInt},
		&schema.Column{Name: "percentile", Type: field.TypeInt},
		&schema.Column{Name: "reliable", Type: field.TypeBool},
		&schema.Column{Name: "result", Type: field.TypeString, Size: 1 << 20},
	)
	scoreEventsTable = &schema.Table{
		Name:       "score_events",
		Columns:    scoreEventsColumns,
		PrimaryKey: []*schema.Column{scoreEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "score_events_session_id", Columns: []*schema.Column{scoreEventsColumns[3]}},
		},
	}

	llmEventsColumns = eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt},
		&schema.Column{Name: "cost_usd", Type: field.TypeFloat64, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "request_body", Type: field.TypeString, Size: 1 << 20, Default: ""},
		&schema.Column{Name: "response_body", Type: field.TypeString, Size: 1 << 20, Default: ""},
	)
	llmEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
	}

	exposuresColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "item_id", Type: field.TypeString},
		{Name: "exposed_at", Type: field.TypeTime},
	}
	exposuresTable = &schema.Table{
		Name:       "item_exposures",
		Columns:    exposuresColumns,
		PrimaryKey: []*schema.Column{exposuresColumns[0]},
		Indexes: []*schema.Index{
			{Name: "item_exposures_user_id", Columns: []*schema.Column{exposuresColumns[1]}},
		},
	}

	bankVersionsColumns = []*schema.Column{
		{Name: "version", Type: field.TypeString},
		{Name: "items", Type: field.TypeInt},
		{Name: "published_at", Type: field.TypeTime},
		{Name: "data", Type: field.TypeString, Size: 1 << 24},
	}
	bankVersionsTable = &schema.Table{
		Name:       "bank_versions",
		Columns:    bankVersionsColumns,
		PrimaryKey: []*schema.Column{bankVersionsColumns[0]},
	}

	globalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	globalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    globalSequenceColumns,
		PrimaryKey: []*schema.Column{globalSequenceColumns[0]},
	}

	// Tables holds every table the store migrates.
	Tables = []*schema.Table{
		globalSequenceTable,
		sessionsTable,
		sessionEventsTable,
		responseEventsTable,
		scoreEventsTable,
		llmEventsTable,
		exposuresTable,
		bankVersionsTable,
	}
)
