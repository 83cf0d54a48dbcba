package postgres

import (
	"database/sql"
	"time"

	"github.com/ratulDIU/RentoVerse/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.RoomRepository
	repository.BookingRepository
	repository.PaymentRepository
	repository.PayoutRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		UserRepository:    NewUserRepository(db),
		RoomRepository:    NewRoomRepository(db),
		BookingRepository: NewBookingRepository(db),
		PaymentRepository: NewPaymentRepository(db),
		PayoutRepository:  NewPayoutRepository(db),
	}
}

// nullTime converts a nullable column into the optional timestamp fields the
// domain entities carry.
func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
