package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// visitSelect is the shared column list for visit queries, kept in one place
// so the scan helpers stay in sync with it.
const visitSelect = `SELECT type, full_name, cnic, phone, email, host, purpose, entry_time, exit_time,
	is_group_visit, group_id, total_members, group_members, scheduled_time`

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanVisit scans a Visitor from sql.Rows.
func scanVisit(rows *sql.Rows) (models.Visitor, error) {
	var v models.Visitor
	var email, groupID, membersJSON, scheduledTime sql.NullString
	var exitTime sql.NullTime
	err := rows.Scan(
		&v.Type, &v.FullName, &v.CNIC, &v.Phone, &email, &v.Host, &v.Purpose,
		&v.EntryTime, &exitTime, &v.IsGroupVisit, &groupID, &v.TotalMembers,
		&membersJSON, &scheduledTime,
	)
	if err != nil {
		return v, fmt.Errorf("scan visit failed: %w", err)
	}
	return fillVisit(v, email, groupID, membersJSON, scheduledTime, exitTime)
}

// scanVisitRow scans a Visitor from a single sql.Row.
func scanVisitRow(row *sql.Row) (models.Visitor, error) {
	var v models.Visitor
	var email, groupID, membersJSON, scheduledTime sql.NullString
	var exitTime sql.NullTime
	err := row.Scan(
		&v.Type, &v.FullName, &v.CNIC, &v.Phone, &email, &v.Host, &v.Purpose,
		&v.EntryTime, &exitTime, &v.IsGroupVisit, &groupID, &v.TotalMembers,
		&membersJSON, &scheduledTime,
	)
	if err != nil {
		return v, err
	}
	return fillVisit(v, email, groupID, membersJSON, scheduledTime, exitTime)
}

func fillVisit(v models.Visitor, email, groupID, membersJSON, scheduledTime sql.NullString, exitTime sql.NullTime) (models.Visitor, error) {
	v.Email = email.String
	v.GroupID = groupID.String
	v.ScheduledTime = scheduledTime.String
	if exitTime.Valid {
		v.ExitTime = &exitTime.Time
	}
	if membersJSON.String != "" {
		if err := json.Unmarshal([]byte(membersJSON.String), &v.GroupMembers); err != nil {
			return v, fmt.Errorf("failed to unmarshal group members: %w", err)
		}
	}
	return v, nil
}
