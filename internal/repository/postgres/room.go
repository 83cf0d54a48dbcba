package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/repository"
)

const roomColumns = `id, title, description, rent_cents, location, type, available, image_url, provider_id`

type roomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) repository.RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	rm, err := scanRoom(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: room %d", domain.ErrNotFound, id)
	}
	return rm, err
}

func (r *roomRepository) SetAvailability(ctx context.Context, roomID int64, available bool) error {
	return setRoomAvailability(ctx, r.db, roomID, available)
}

func (r *roomRepository) ListAvailable(ctx context.Context) ([]domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE available = TRUE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *rm)
	}
	return rooms, rows.Err()
}

func scanRoom(row rowScanner) (*domain.Room, error) {
	rm := &domain.Room{}
	var description, roomType, imageURL sql.NullString
	err := row.Scan(&rm.ID, &rm.Title, &description, &rm.RentCents, &rm.Location, &roomType, &rm.Available, &imageURL, &rm.ProviderID)
	if err != nil {
		return nil, err
	}
	rm.Description = description.String
	rm.Type = roomType.String
	rm.ImageURL = imageURL.String
	return rm, nil
}

// setRoomAvailability is shared between the plain repository and EscrowTx.
func setRoomAvailability(ctx context.Context, db execer, roomID int64, available bool) error {
	_, err := db.ExecContext(ctx, `UPDATE rooms SET available = $1 WHERE id = $2`, available, roomID)
	return err
}
