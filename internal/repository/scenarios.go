package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
)

// 需求点按 position 排序，这个顺序就是染色体中三元组的顺序
func insertSites(ctx context.Context, tx *sql.Tx, scenarioID int64, sites []domain.Site) error {
	query := `
		INSERT INTO scenario_sites (
			scenario_id,
			position,
			name,
			code,
			required_volunteers,
			required_trucks,
			required_packages
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	for i := range sites {
		params := []any{
			scenarioID,
			i,
			sites[i].Name,
			sites[i].Code,
			sites[i].RequiredVolunteers,
			sites[i].RequiredTrucks,
			sites[i].RequiredPackages,
		}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&sites[i].ID); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) CreateScenario(sc *domain.Scenario) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO scenarios (name, description, total_volunteers, total_trucks, total_packages)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	params := []any{sc.Name, sc.Description, sc.Pool.TotalVolunteers, sc.Pool.TotalTrucks, sc.Pool.TotalPackages}
	dst := []any{&sc.ID, &sc.CreatedAt, &sc.Version}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	if err := insertSites(ctx, tx, sc.ID, sc.Sites); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// GetAllScenarios 只返回场景的元数据以及资源总量，不包含需求点
func (r *Repository) GetAllScenarios() ([]*domain.Scenario, error) {
	query := `
		SELECT
			id,
			name,
			description,
			total_volunteers,
			total_trucks,
			total_packages,
			created_at,
			version
		FROM scenarios
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scenarios := []*domain.Scenario{}
	for rows.Next() {
		sc := &domain.Scenario{
			Sites: []domain.Site{},
		}
		dst := []any{
			&sc.ID,
			&sc.Name,
			&sc.Description,
			&sc.Pool.TotalVolunteers,
			&sc.Pool.TotalTrucks,
			&sc.Pool.TotalPackages,
			&sc.CreatedAt,
			&sc.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return scenarios, nil
}

func (r *Repository) GetScenarioByID(id int64) (*domain.Scenario, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			name,
			description,
			total_volunteers,
			total_trucks,
			total_packages,
			created_at,
			version
		FROM scenarios
		WHERE id = $1
	`

	sc := &domain.Scenario{
		ID:    id,
		Sites: []domain.Site{},
	}

	dst := []any{
		&sc.Name,
		&sc.Description,
		&sc.Pool.TotalVolunteers,
		&sc.Pool.TotalTrucks,
		&sc.Pool.TotalPackages,
		&sc.CreatedAt,
		&sc.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	query = `
		SELECT id, name, code, required_volunteers, required_trucks, required_packages
		FROM scenario_sites
		WHERE scenario_id = $1
		ORDER BY position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var site domain.Site
		dst := []any{
			&site.ID,
			&site.Name,
			&site.Code,
			&site.RequiredVolunteers,
			&site.RequiredTrucks,
			&site.RequiredPackages,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		sc.Sites = append(sc.Sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sc, nil
}

// UpdateScenario 更新场景，需求点整体替换
// 版本号不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateScenario(sc *domain.Scenario) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE scenarios
		SET
			name = $1,
			description = $2,
			total_volunteers = $3,
			total_trucks = $4,
			total_packages = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	params := []any{
		sc.Name,
		sc.Description,
		sc.Pool.TotalVolunteers,
		sc.Pool.TotalTrucks,
		sc.Pool.TotalPackages,
		sc.ID,
		sc.Version,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&sc.Version); err != nil {
		return err
	}

	query = `DELETE FROM scenario_sites WHERE scenario_id = $1`
	if _, err := tx.ExecContext(ctx, query, sc.ID); err != nil {
		return err
	}

	if err := insertSites(ctx, tx, sc.ID, sc.Sites); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteScenario(id int64) error {
	query := `
		DELETE FROM scenarios WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
