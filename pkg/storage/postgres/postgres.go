// Package postgres implements storage.Store on PostgreSQL. One import and
// all its rows are written inside a single database transaction; the
// partial unique index on content_hash settles concurrent workers racing
// on the same document.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/billfold/billfold/pkg/db"
	"github.com/billfold/billfold/pkg/models"
	"github.com/billfold/billfold/pkg/storage"
)

const uniqueViolation = "23505"

type Store struct {
	db *db.DB
}

func New(database *db.DB) *Store {
	return &Store{db: database}
}

// Migrate creates the schema. Idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`create table if not exists imports (
			id text primary key,
			file_name text not null,
			content_hash text not null,
			email_id text not null default '',
			parser_used text not null default '',
			status text not null,
			notes text not null default '',
			created_at timestamptz not null default now()
		)`,
		`create unique index if not exists imports_content_hash_active
			on imports (content_hash) where status <> 'failed'`,
		`create table if not exists transactions (
			id bigserial primary key,
			date date not null,
			description text not null,
			merchant text not null,
			amount numeric not null,
			currency text not null,
			type text not null,
			reward_points integer,
			card_number text not null default '',
			card_holder text not null default '',
			source_bank text not null default '',
			source_doc text not null default '',
			statement_date text not null default '',
			category text not null default '',
			sub_category text not null default '',
			parser_used text not null default '',
			import_id text not null references imports (id),
			created_at timestamptz not null default now()
		)`,
		`create index if not exists transactions_date on transactions (date)`,
		`create index if not exists transactions_import on transactions (import_id)`,
		`create table if not exists reward_summaries (
			id bigserial primary key,
			statement_date text not null default '',
			card_number text not null default '',
			card_holder text not null default '',
			opening_balance integer,
			earned integer,
			redeemed integer,
			adjusted_lapsed integer,
			closing_balance integer,
			parser_used text not null default '',
			import_id text not null references imports (id),
			unique (statement_date, card_number)
		)`,
	}
	for _, stmt := range statements {
		if err := s.db.RawExec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) FindImportByHash(ctx context.Context, hash string) (*models.Import, error) {
	query := sq.
		Select("id", "file_name", "content_hash", "email_id", "parser_used", "status", "notes", "created_at").
		From("imports").
		Where(sq.Eq{"content_hash": hash}).
		Where(sq.NotEq{"status": string(models.ImportFailed)}).
		Limit(1)

	var imp models.Import
	err := s.db.Select(ctx, query, func(rows pgx.Rows) error {
		var status string
		if err := rows.Scan(&imp.ID, &imp.FileName, &imp.ContentHash, &imp.EmailID,
			&imp.ParserUsed, &status, &imp.Notes, &imp.CreatedAt); err != nil {
			return err
		}
		imp.Status = models.ImportStatus(status)
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find import by hash: %w", err)
	}
	return &imp, nil
}

func (s *Store) TransactionsByImport(ctx context.Context, importID string) ([]models.Transaction, error) {
	return s.selectTransactions(ctx, sq.Eq{"import_id": importID})
}

func (s *Store) ListTransactions(ctx context.Context, from, to *time.Time) ([]models.Transaction, error) {
	conds := sq.And{}
	if from != nil {
		conds = append(conds, sq.GtOrEq{"date": *from})
	}
	if to != nil {
		conds = append(conds, sq.Lt{"date": *to})
	}
	return s.selectTransactions(ctx, conds)
}

func (s *Store) selectTransactions(ctx context.Context, cond interface{}) ([]models.Transaction, error) {
	query := sq.
		Select("id", "date", "description", "merchant", "amount", "currency", "type",
			"reward_points", "card_number", "card_holder", "source_bank", "source_doc",
			"statement_date", "category", "sub_category", "parser_used", "import_id", "created_at").
		From("transactions").
		OrderBy("date", "id")
	if cond != nil {
		query = query.Where(cond)
	}

	var out []models.Transaction
	err := s.db.Select(ctx, query, func(rows pgx.Rows) error {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.Date, &tx.Description, &tx.Merchant, &tx.Amount,
			&tx.Currency, &tx.Type, &tx.RewardPoints, &tx.CardNumber, &tx.CardHolder,
			&tx.SourceBank, &tx.SourceDoc, &tx.StatementDate, &tx.Category,
			&tx.SubCategory, &tx.ParserUsed, &tx.ImportID, &tx.CreatedAt); err != nil {
			return err
		}
		out = append(out, tx)
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	return out, nil
}

func (s *Store) SaveImport(ctx context.Context, imp *models.Import, txs []models.Transaction, rewards []models.RewardSummary) error {
	err := s.db.RunInTransaction(ctx, func(ctx context.Context, txDB *db.DB) error {
		insert := sq.
			Insert("imports").
			Columns("id", "file_name", "content_hash", "email_id", "parser_used", "status", "notes", "created_at").
			Values(imp.ID, imp.FileName, imp.ContentHash, imp.EmailID, imp.ParserUsed,
				string(imp.Status), imp.Notes, imp.CreatedAt)
		if err := txDB.Insert(ctx, insert, nil); err != nil {
			return fmt.Errorf("insert import: %w", err)
		}

		if len(txs) > 0 {
			txInsert := sq.
				Insert("transactions").
				Columns("date", "description", "merchant", "amount", "currency", "type",
					"reward_points", "card_number", "card_holder", "source_bank", "source_doc",
					"statement_date", "category", "sub_category", "parser_used", "import_id", "created_at")
			for _, tx := range txs {
				txInsert = txInsert.Values(tx.Date, tx.Description, tx.Merchant, tx.Amount,
					tx.Currency, tx.Type, tx.RewardPoints, tx.CardNumber, tx.CardHolder,
					tx.SourceBank, tx.SourceDoc, tx.StatementDate, tx.Category,
					tx.SubCategory, tx.ParserUsed, tx.ImportID, tx.CreatedAt)
			}
			if err := txDB.Insert(ctx, txInsert, nil); err != nil {
				return fmt.Errorf("insert transactions: %w", err)
			}
		}

		if len(rewards) > 0 {
			rwInsert := sq.
				Insert("reward_summaries").
				Columns("statement_date", "card_number", "card_holder", "opening_balance",
					"earned", "redeemed", "adjusted_lapsed", "closing_balance", "parser_used", "import_id").
				Suffix("on conflict (statement_date, card_number) do nothing")
			for _, rw := range rewards {
				rwInsert = rwInsert.Values(rw.StatementDate, rw.CardNumber, rw.CardHolder,
					rw.OpeningBalance, rw.Earned, rw.Redeemed, rw.AdjustedLapsed,
					rw.ClosingBalance, rw.ParserUsed, rw.ImportID)
			}
			if err := txDB.Insert(ctx, rwInsert, nil); err != nil {
				return fmt.Errorf("insert reward summaries: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return storage.ErrDuplicateHash
		}
		return err
	}
	return nil
}
