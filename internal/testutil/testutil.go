package testutil

import (
	"testing"

	"jacket_marketplace/internal/db"
	"jacket_marketplace/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/fernet/fernet-go"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB opens a private in-memory SQLite database with the schema applied.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(d); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	sqlDB, err := d.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1) // in-memory databases vanish when the last connection closes
	t.Cleanup(func() { _ = sqlDB.Close() })
	return d
}

// NewRedis starts a miniredis server and returns a client for it.
func NewRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

// FernetKey returns a freshly generated encoded Fernet key.
func FernetKey(t *testing.T) string {
	t.Helper()
	var k fernet.Key
	if err := k.Generate(); err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return k.Encode()
}

// CreateUser inserts a user with fake personal data. wiseKey is stored as given.
func CreateUser(t *testing.T, d *gorm.DB, role domain.Role, wiseKey string) domain.User {
	t.Helper()
	u := domain.User{
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     gofakeit.Email(),
		Phone:     "+3598" + gofakeit.Numerify("#########"),
		Password:  "hash",
		IBAN:      "BG80BNBG96611020345678",
		Role:      role,
		WiseKey:   wiseKey,
	}
	if err := d.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreateJacket inserts a jacket owned by creator.
func CreateJacket(t *testing.T, d *gorm.DB, creator domain.User, price int64) domain.Jacket {
	t.Helper()
	j := domain.Jacket{
		PhotoURL:    "https://bucket.example/" + uuid.NewString() + ".png",
		Brand:       gofakeit.Company(),
		Description: gofakeit.Color() + " " + gofakeit.Word() + " jacket",
		Size:        domain.SizeM,
		Price:       price,
		CreatorID:   creator.ID,
		PicHash:     gofakeit.LetterN(64),
	}
	if err := d.Create(&j).Error; err != nil {
		t.Fatalf("create jacket: %v", err)
	}
	return j
}
