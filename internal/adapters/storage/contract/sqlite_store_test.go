package contract_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fieldops/internal/adapters/storage"
	"fieldops/internal/adapters/storage/client"
	"fieldops/internal/adapters/storage/contract"
	"fieldops/internal/adapters/storage/storagetest"
	clientdomain "fieldops/internal/domain/client"
	domain "fieldops/internal/domain/contract"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestSQLiteStore_ContractsFollowClient tests listing by client and the cascade on client deletion.
func TestSQLiteStore_ContractsFollowClient(t *testing.T) {
	db := storagetest.Open(t)
	clients := client.NewSQLiteStore(db)
	contracts := contract.NewSQLiteStore(db)
	ctx := context.Background()

	if err := clients.Save(ctx, clientdomain.Client{ID: "c1", Name: "Harbour Towers", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Save client: %v", err)
	}
	late := domain.Contract{ID: "k1", ClientID: "c1", TeamID: "north", Title: "Lifts", StartDate: date(2026, 1, 1), EndDate: date(2026, 12, 31), VisitFrequency: domain.FrequencyMonthly, CreatedAt: time.Now()}
	early := domain.Contract{ID: "k2", ClientID: "c1", Title: "Chillers", StartDate: date(2026, 1, 1), EndDate: date(2026, 6, 30), VisitFrequency: domain.FrequencyQuarterly, CreatedAt: time.Now()}
	for _, c := range []domain.Contract{late, early} {
		if err := contracts.Save(ctx, c); err != nil {
			t.Fatalf("Save contract: %v", err)
		}
	}

	got, err := contracts.List(ctx, contract.ListFilter{ClientID: "c1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "k2" {
		t.Fatalf("expected earliest end date first, got %+v", got)
	}
	if !got[1].EndDate.Equal(late.EndDate) {
		t.Errorf("end date = %v, want %v", got[1].EndDate, late.EndDate)
	}

	byTeam, _ := contracts.List(ctx, contract.ListFilter{TeamID: "north"})
	if len(byTeam) != 1 || byTeam[0].ID != "k1" {
		t.Errorf("team filter: got %+v", byTeam)
	}

	if err := clients.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete client: %v", err)
	}
	if _, err := contracts.GetByID(ctx, "k1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if n, _ := clients.Count(ctx); n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}
