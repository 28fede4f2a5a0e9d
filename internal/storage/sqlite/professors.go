package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aanand-mishra/university-api/internal/storage"
	"github.com/aanand-mishra/university-api/internal/types"
)

const professorsSchema = `
CREATE TABLE IF NOT EXISTS professors (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	last_name  TEXT NOT NULL,
	department TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_professors_department ON professors(department);

CREATE TABLE IF NOT EXISTS specialties (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS professor_specialties (
	professor_id INTEGER NOT NULL REFERENCES professors(id) ON DELETE CASCADE,
	specialty_id INTEGER NOT NULL REFERENCES specialties(id),
	PRIMARY KEY (professor_id, specialty_id)
);
`

// Professors implements storage.ProfessorStorage.
type Professors struct {
	db
}

var (
	_ storage.ProfessorStorage = (*Professors)(nil)
	_ storage.Pinger           = (*Professors)(nil)
)

// NewProfessors opens the professors database at path.
func NewProfessors(path string) (*Professors, error) {
	d, err := open(path, professorsSchema)
	if err != nil {
		return nil, fmt.Errorf("sqlite.NewProfessors: %w", err)
	}
	return &Professors{db: d}, nil
}

// CreateProfessor inserts a professor and links its specialties, creating
// the ones that do not exist yet. Repeated names are linked once.
func (p *Professors) CreateProfessor(ctx context.Context, req types.ProfessorRequest) (types.Professor, error) {
	prof := types.Professor{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Department:  req.Department,
		Specialties: make([]types.Specialty, 0, len(req.Specialties)),
	}

	err := p.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO professors (first_name, last_name, department) VALUES (?, ?, ?)`,
			prof.FirstName, prof.LastName, prof.Department)
		if err != nil {
			return fmt.Errorf("insert professor: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		prof.ID = int(id)

		seen := make(map[string]bool, len(req.Specialties))
		for _, name := range req.Specialties {
			if seen[name] {
				continue
			}
			seen[name] = true

			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO specialties (name) VALUES (?)`, name); err != nil {
				return fmt.Errorf("insert specialty %q: %w", name, err)
			}

			sp := types.Specialty{Name: name}
			if err := tx.QueryRowContext(ctx,
				`SELECT id FROM specialties WHERE name = ?`, name).Scan(&sp.ID); err != nil {
				return fmt.Errorf("lookup specialty %q: %w", name, err)
			}

			if _, err := tx.ExecContext(ctx,
				`INSERT INTO professor_specialties (professor_id, specialty_id) VALUES (?, ?)`,
				prof.ID, sp.ID); err != nil {
				return fmt.Errorf("link specialty %q: %w", name, err)
			}
			prof.Specialties = append(prof.Specialties, sp)
		}
		return nil
	})
	if err != nil {
		return types.Professor{}, fmt.Errorf("CreateProfessor: %w", err)
	}

	return prof, nil
}

// GetProfessors returns every professor.
func (p *Professors) GetProfessors(ctx context.Context) ([]types.Professor, error) {
	profs, err := p.queryProfessors(ctx, ``)
	if err != nil {
		return nil, fmt.Errorf("GetProfessors: %w", err)
	}
	return profs, nil
}

// GetProfessorByID returns one professor or storage.ErrNotFound.
func (p *Professors) GetProfessorByID(ctx context.Context, id int) (types.Professor, error) {
	profs, err := p.queryProfessors(ctx, `WHERE id = ?`, id)
	if err != nil {
		return types.Professor{}, fmt.Errorf("GetProfessorByID: %w", err)
	}
	if len(profs) == 0 {
		return types.Professor{}, fmt.Errorf("GetProfessorByID: professor %d: %w", id, storage.ErrNotFound)
	}
	return profs[0], nil
}

// GetProfessorsByDepartment returns the professors of a department.
func (p *Professors) GetProfessorsByDepartment(ctx context.Context, department string) ([]types.Professor, error) {
	profs, err := p.queryProfessors(ctx, `WHERE department = ?`, department)
	if err != nil {
		return nil, fmt.Errorf("GetProfessorsByDepartment: %w", err)
	}
	return profs, nil
}

// GetProfessorsBySpecialty returns the professors holding the named specialty.
func (p *Professors) GetProfessorsBySpecialty(ctx context.Context, specialty string) ([]types.Professor, error) {
	profs, err := p.queryProfessors(ctx, `
		WHERE id IN (
			SELECT ps.professor_id
			FROM professor_specialties ps
			JOIN specialties s ON s.id = ps.specialty_id
			WHERE s.name = ?
		)`, specialty)
	if err != nil {
		return nil, fmt.Errorf("GetProfessorsBySpecialty: %w", err)
	}
	return profs, nil
}

// queryProfessors loads the matching professors, then their specialties in a
// second query keyed by professor id.
func (p *Professors) queryProfessors(ctx context.Context, where string, args ...any) ([]types.Professor, error) {
	rows, err := p.Db.QueryContext(ctx, `
		SELECT id, first_name, last_name, department
		FROM professors `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query professors: %w", err)
	}
	defer rows.Close()

	profs := make([]types.Professor, 0)
	index := make(map[int]int)
	for rows.Next() {
		var prof types.Professor
		if err := rows.Scan(&prof.ID, &prof.FirstName, &prof.LastName, &prof.Department); err != nil {
			return nil, fmt.Errorf("scan professor: %w", err)
		}
		prof.Specialties = make([]types.Specialty, 0)
		index[prof.ID] = len(profs)
		profs = append(profs, prof)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("professor rows: %w", err)
	}
	if len(profs) == 0 {
		return profs, nil
	}

	ids := make([]int, 0, len(profs))
	for _, prof := range profs {
		ids = append(ids, prof.ID)
	}
	placeholders, idArgs := inClause(ids)

	specRows, err := p.Db.QueryContext(ctx, `
		SELECT ps.professor_id, s.id, s.name
		FROM professor_specialties ps
		JOIN specialties s ON s.id = ps.specialty_id
		WHERE ps.professor_id IN (`+placeholders+`)
		ORDER BY ps.professor_id, s.name`, idArgs...)
	if err != nil {
		return nil, fmt.Errorf("query specialties: %w", err)
	}
	defer specRows.Close()

	for specRows.Next() {
		var (
			profID int
			sp     types.Specialty
		)
		if err := specRows.Scan(&profID, &sp.ID, &sp.Name); err != nil {
			return nil, fmt.Errorf("scan specialty: %w", err)
		}
		if i, ok := index[profID]; ok {
			profs[i].Specialties = append(profs[i].Specialties, sp)
		}
	}
	if err := specRows.Err(); err != nil {
		return nil, fmt.Errorf("specialty rows: %w", err)
	}

	return profs, nil
}
