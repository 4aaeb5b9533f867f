package core

import (
	"testing"

	"caseflow/pkg/domain"
)

func TestGroupByPhaseProducesAllColumns(t *testing.T) {
	catalog := domain.DefaultCatalog()
	companies := []Company{
		{Base: Base{ID: "c-1"}, CurrentStatus: StatusScheduled, Phase: domain.PhaseScheduling},
		{Base: Base{ID: "c-2"}, CurrentStatus: StatusPending, Phase: domain.PhaseIntake},
		{Base: Base{ID: "c-3"}, CurrentStatus: StatusContacted, Phase: domain.PhaseIntake},
	}
	board := GroupByPhase(catalog, companies)
	if len(board) != 5 {
		t.Fatalf("expected one column per phase, got %d", len(board))
	}
	for i := 1; i < len(board); i++ {
		if board[i-1].Phase >= board[i].Phase {
			t.Fatalf("columns not in ascending phase order: %+v", board)
		}
	}

	intake := board[0]
	if intake.Phase != domain.PhaseIntake {
		t.Fatalf("first column phase = %d", intake.Phase)
	}
	if len(intake.Companies) != 2 || intake.Companies[0].ID != "c-2" || intake.Companies[1].ID != "c-3" {
		t.Fatalf("intake column order wrong: %+v", intake.Companies)
	}
	if len(intake.Statuses) != 2 {
		t.Fatalf("intake statuses = %v", intake.Statuses)
	}

	for _, column := range board[2:] {
		if len(column.Companies) != 0 {
			t.Fatalf("phase %d should be empty: %+v", column.Phase, column.Companies)
		}
	}
}

func TestGroupByPhaseEmptyInput(t *testing.T) {
	board := GroupByPhase(domain.DefaultCatalog(), nil)
	if len(board) != 5 {
		t.Fatalf("empty input still yields all columns, got %d", len(board))
	}
	for _, column := range board {
		if len(column.Companies) != 0 {
			t.Fatalf("unexpected companies in %d", column.Phase)
		}
	}
}
