package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"fundscope/internal/config"
	"fundscope/internal/repository/postgres"
)

// Fixed IDs so repeated seeding runs converge on the same rows.
const (
	seedOrgID      = "11111111-1111-1111-1111-111111111111"
	seedUserID     = "22222222-2222-2222-2222-222222222222"
	seedSubjectID  = "33333333-3333-3333-3333-333333333333"
	seedDocumentID = "44444444-4444-4444-4444-444444444444"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Seed a trial organization, a subject, and one document
	if err := seedData(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to seed data: %v", err)
	}

	log.Println("🎉 Seeding complete!")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\""); err != nil {
		return err
	}

	createOrganizations := `
		CREATE TABLE IF NOT EXISTS ` + tables.Organizations + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			plan TEXT NOT NULL DEFAULT 'trial',
			trial_chat_limit INTEGER NOT NULL DEFAULT 10,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createOrganizations); err != nil {
		return err
	}

	createSubjects := `
		CREATE TABLE IF NOT EXISTS ` + tables.Subjects + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			org_id UUID REFERENCES ` + tables.Organizations + `(id),
			name TEXT NOT NULL,
			context TEXT,
			archived BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createSubjects); err != nil {
		return err
	}

	createDocuments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			subject_id UUID NOT NULL REFERENCES ` + tables.Subjects + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			file_type TEXT NOT NULL,
			extracted_text TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createDocuments); err != nil {
		return err
	}

	createChats := `
		CREATE TABLE IF NOT EXISTS ` + tables.Chats + ` (
			id UUID PRIMARY KEY,
			subject_id UUID NOT NULL REFERENCES ` + tables.Subjects + `(id) ON DELETE CASCADE,
			analysis_type TEXT NOT NULL,
			user_id UUID NOT NULL,
			org_id UUID REFERENCES ` + tables.Organizations + `(id),
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createChats); err != nil {
		return err
	}

	createMessages := `
		CREATE TABLE IF NOT EXISTS ` + tables.Messages + ` (
			id UUID PRIMARY KEY,
			chat_id UUID NOT NULL REFERENCES ` + tables.Chats + `(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			parts JSONB NOT NULL,
			attachments JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createMessages); err != nil {
		return err
	}

	createStreams := `
		CREATE TABLE IF NOT EXISTS ` + tables.Streams + ` (
			id UUID PRIMARY KEY,
			chat_id UUID NOT NULL REFERENCES ` + tables.Chats + `(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createStreams); err != nil {
		return err
	}

	// Create indexes
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `subjects_user ON ` + tables.Subjects + `(user_id) WHERE org_id IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `subjects_org ON ` + tables.Subjects + `(org_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `documents_subject ON ` + tables.Documents + `(subject_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `chats_subject ON ` + tables.Chats + `(subject_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `chats_org ON ` + tables.Chats + `(org_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `messages_chat ON ` + tables.Messages + `(chat_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `streams_chat ON ` + tables.Streams + `(chat_id, created_at)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Streams,
		tables.Messages,
		tables.Chats,
		tables.Documents,
		tables.Subjects,
		tables.Organizations,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}

// seedData inserts a trial organization with one subject and document.
// Inserts are idempotent via fixed IDs + ON CONFLICT DO NOTHING.
func seedData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	now := time.Now()

	orgSQL := `
		INSERT INTO ` + tables.Organizations + ` (id, name, plan, trial_chat_limit, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := pool.Exec(ctx, orgSQL, seedOrgID, "Evergreen Community Fund", "trial", 10, now); err != nil {
		return err
	}
	log.Println("✅ Seeded trial organization")

	subjectSQL := `
		INSERT INTO ` + tables.Subjects + ` (id, user_id, org_id, name, context, archived, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		ON CONFLICT (id) DO NOTHING
	`
	subjectContext := "Regional youth literacy initiative seeking three-year operating support."
	if _, err := pool.Exec(ctx, subjectSQL, seedSubjectID, seedUserID, seedOrgID,
		"Riverbend Literacy Program", subjectContext, now); err != nil {
		return err
	}
	log.Println("✅ Seeded subject")

	docSQL := `
		INSERT INTO ` + tables.Documents + ` (id, subject_id, name, file_type, extracted_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	extracted := "Riverbend Literacy Program 2025 proposal. The program serves 400 students " +
		"across three counties with after-school tutoring, summer reading camps, and a " +
		"family literacy track. Requested amount: $180,000 over three years. Prior funders " +
		"include the Hargrove Foundation and the state library commission."
	if _, err := pool.Exec(ctx, docSQL, seedDocumentID, seedSubjectID,
		"riverbend-proposal-2025.pdf", "application/pdf", extracted, now); err != nil {
		return err
	}
	log.Println("✅ Seeded document")

	return nil
}
