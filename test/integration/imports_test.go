package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medloop/medloop/internal/domain/patientimport"
	"github.com/medloop/medloop/internal/platform/db"
	"github.com/medloop/medloop/internal/platform/reporting"
)

func TestImportJobRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	tenant := uniqueTenantID("imports")

	createTenantSchema(t, ctx, tenant)
	defer dropTenantSchema(t, ctx, tenant)

	repo := patientimport.NewJobRepoPG(globalDB.Pool)

	job := &patientimport.ImportJob{
		TenantID:        tenant,
		RecordCount:     25,
		ErrorCount:      3,
		WarningCount:    2,
		SuggestionCount: 4,
		DuplicateCount:  1,
		Score:           89,
		Valid:           false,
	}

	err := withTenantConn(ctx, globalDB.Pool, tenant, func(ctx context.Context) error {
		return repo.Create(ctx, job)
	})
	if err != nil {
		t.Fatalf("create import job: %v", err)
	}
	if job.ID == uuid.Nil {
		t.Fatal("expected job ID to be assigned on create")
	}

	err = withTenantConn(ctx, globalDB.Pool, tenant, func(ctx context.Context) error {
		got, err := repo.GetByID(ctx, job.ID)
		if err != nil {
			return err
		}
		if got.RecordCount != 25 {
			t.Errorf("expected record count 25, got %d", got.RecordCount)
		}
		if got.Score != 89 {
			t.Errorf("expected score 89, got %d", got.Score)
		}
		if got.Valid {
			t.Error("expected job to be invalid")
		}
		if got.TenantID != tenant {
			t.Errorf("expected tenant %s, got %s", tenant, got.TenantID)
		}
		if got.CreatedAt.IsZero() {
			t.Error("expected created_at to be populated")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("get import job: %v", err)
	}
}

func TestImportJobRepo_List(t *testing.T) {
	ctx := context.Background()
	tenant := uniqueTenantID("imports")

	createTenantSchema(t, ctx, tenant)
	defer dropTenantSchema(t, ctx, tenant)

	repo := patientimport.NewJobRepoPG(globalDB.Pool)

	err := withTenantConn(ctx, globalDB.Pool, tenant, func(ctx context.Context) error {
		for i := 0; i < 5; i++ {
			job := &patientimport.ImportJob{
				TenantID:    tenant,
				RecordCount: 10 + i,
				Score:       100,
				Valid:       true,
			}
			if err := repo.Create(ctx, job); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed import jobs: %v", err)
	}

	err = withTenantConn(ctx, globalDB.Pool, tenant, func(ctx context.Context) error {
		jobs, total, err := repo.List(ctx, 3, 0)
		if err != nil {
			return err
		}
		if total != 5 {
			t.Errorf("expected total 5, got %d", total)
		}
		if len(jobs) != 3 {
			t.Errorf("expected 3 jobs in page, got %d", len(jobs))
		}

		jobs, _, err = repo.List(ctx, 3, 3)
		if err != nil {
			return err
		}
		if len(jobs) != 2 {
			t.Errorf("expected 2 jobs in second page, got %d", len(jobs))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("list import jobs: %v", err)
	}
}

func TestImportJobs_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	tenantA := uniqueTenantID("impA")
	tenantB := uniqueTenantID("impB")

	createTenantSchema(t, ctx, tenantA)
	defer dropTenantSchema(t, ctx, tenantA)
	createTenantSchema(t, ctx, tenantB)
	defer dropTenantSchema(t, ctx, tenantB)

	repo := patientimport.NewJobRepoPG(globalDB.Pool)

	err := withTenantConn(ctx, globalDB.Pool, tenantA, func(ctx context.Context) error {
		return repo.Create(ctx, &patientimport.ImportJob{TenantID: tenantA, RecordCount: 1, Score: 100, Valid: true})
	})
	if err != nil {
		t.Fatalf("create job in tenant A: %v", err)
	}

	err = withTenantConn(ctx, globalDB.Pool, tenantB, func(ctx context.Context) error {
		_, total, err := repo.List(ctx, 10, 0)
		if err != nil {
			return err
		}
		if total != 0 {
			t.Errorf("expected tenant B to see 0 jobs, got %d", total)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("list jobs in tenant B: %v", err)
	}
}

func TestPGReporter_PersistsReport(t *testing.T) {
	ctx := context.Background()

	// The reporter writes to the shared error_reports table on the pool's
	// default search path, so run the migrations against public directly.
	migrator := db.NewMigrator(globalDB.Pool, globalDB.MigrationsDir)
	if _, err := migrator.Up(ctx, "public"); err != nil {
		t.Fatalf("migrate public schema: %v", err)
	}

	reporter := reporting.NewPGReporter(globalDB.Pool, zerolog.Nop())
	reporter.Report(ctx, "duplicate_detector", "warning", errors.New("model response unparseable"))

	var count int
	err := globalDB.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM public.error_reports WHERE component = 'duplicate_detector'`).Scan(&count)
	if err != nil {
		t.Fatalf("count error reports: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 error report, got %d", count)
	}
}
