package repository

import (
	"strings"
	"testing"
)

func TestGetLeadForUpdateQueryTakesRowLock(t *testing.T) {
	query := strings.ToLower(getLeadForUpdateQuery)

	if !strings.HasSuffix(strings.TrimSpace(query), "for update") {
		t.Fatal("expected locked lead read to end with FOR UPDATE")
	}
	if !strings.Contains(query, "where id = $1") {
		t.Fatal("expected locked lead read to select by id")
	}
}

func TestLeadColumnsCarryConversionState(t *testing.T) {
	columns := strings.ToLower(leadColumns)

	for _, col := range []string{"converted_at", "organization_id", "owner_id", "status"} {
		if !strings.Contains(columns, col) {
			t.Fatalf("expected lead columns to include %q", col)
		}
	}
}

func TestListLeadContactsQueryOrdersByCreation(t *testing.T) {
	query := strings.ToLower(listLeadContactsQuery)

	if !strings.Contains(query, "order by created_at asc") {
		t.Fatal("expected lead contacts to be listed in creation order")
	}
}
