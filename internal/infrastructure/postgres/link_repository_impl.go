package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/abiosite/abio-api/internal/domain/entity"
	"github.com/abiosite/abio-api/internal/domain/repository"
)

const linkColumns = `l.id, l.profile_id, l.title, l.url, l.platform, l.is_visible, l.display_order,
	l.click_count, l.icon_url, l.created_at, l.updated_at`

type LinkRepository struct {
	db PgxPool
}

func NewLinkRepository(db PgxPool) *LinkRepository {
	return &LinkRepository{db: db}
}

func scanLink(row pgx.Row) (*entity.Link, error) {
	l := &entity.Link{}
	if err := row.Scan(&l.ID, &l.ProfileID, &l.Title, &l.URL, &l.Platform, &l.IsVisible,
		&l.DisplayOrder, &l.ClickCount, &l.IconURL, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return l, nil
}

func (r *LinkRepository) ListByProfile(ctx context.Context, profileID string) ([]entity.Link, error) {
	rows, err := r.db.Query(ctx, `SELECT `+linkColumns+` FROM links l
		WHERE l.profile_id = $1
		ORDER BY l.display_order ASC, l.created_at ASC`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]entity.Link, 0)
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

func (r *LinkRepository) URLExists(ctx context.Context, profileID, url, excludeLinkID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM links WHERE profile_id = $1 AND url = $2 AND ($3 = '' OR id::text <> $3))`,
		profileID, url, excludeLinkID).Scan(&exists)
	return exists, err
}

func (r *LinkRepository) Create(ctx context.Context, l *entity.Link) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO links (profile_id, title, url, platform, is_visible, display_order)
		VALUES ($1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX(display_order), -1) + 1 FROM links WHERE profile_id = $1))
		RETURNING id, display_order, click_count, icon_url, created_at, updated_at`,
		l.ProfileID, l.Title, l.URL, l.Platform, l.IsVisible,
	).Scan(&l.ID, &l.DisplayOrder, &l.ClickCount, &l.IconURL, &l.CreatedAt, &l.UpdatedAt)
	return mapError(err)
}

func (r *LinkRepository) GetOwned(ctx context.Context, userID, linkID string) (*entity.Link, error) {
	return scanLink(r.db.QueryRow(ctx, `SELECT `+linkColumns+` FROM links l
		JOIN profiles p ON p.id = l.profile_id
		WHERE l.id = $1 AND p.user_id = $2`, linkID, userID))
}

func (r *LinkRepository) UpdateOwned(ctx context.Context, userID string, l *entity.Link) error {
	err := r.db.QueryRow(ctx, `
		UPDATE links l
		SET title = $3, url = $4, platform = $5, is_visible = $6, updated_at = now()
		FROM profiles p
		WHERE l.id = $1 AND p.id = l.profile_id AND p.user_id = $2
		RETURNING l.updated_at`,
		l.ID, userID, l.Title, l.URL, l.Platform, l.IsVisible,
	).Scan(&l.UpdatedAt)
	return mapError(err)
}

func (r *LinkRepository) DeleteOwned(ctx context.Context, userID, linkID string) error {
	res, err := r.db.Exec(ctx, `
		DELETE FROM links l USING profiles p
		WHERE l.id = $1 AND p.id = l.profile_id AND p.user_id = $2`, linkID, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *LinkRepository) Reorder(ctx context.Context, profileID string, orders []entity.LinkOrder) error {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var owned int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM links WHERE profile_id = $1 AND id::text = ANY($2)`,
			profileID, ids).Scan(&owned); err != nil {
			return err
		}
		if owned != len(orders) {
			return repository.ErrOwnershipMismatch
		}
		for _, o := range orders {
			if _, err := tx.Exec(ctx, `UPDATE links SET display_order = $3, updated_at = now()
				WHERE id = $1 AND profile_id = $2`, o.ID, profileID, o.DisplayOrder); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *LinkRepository) IncrementClicks(ctx context.Context, linkID string) error {
	res, err := r.db.Exec(ctx, `UPDATE links SET click_count = click_count + 1 WHERE id = $1`, linkID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *LinkRepository) SetIcon(ctx context.Context, userID, linkID, iconURL string) (*entity.Link, error) {
	return scanLink(r.db.QueryRow(ctx, `
		UPDATE links l SET icon_url = $3, updated_at = now()
		FROM profiles p
		WHERE l.id = $1 AND p.id = l.profile_id AND p.user_id = $2
		RETURNING `+linkColumns, linkID, userID, iconURL))
}

var _ repository.LinkRepository = (*LinkRepository)(nil)
