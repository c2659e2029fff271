package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	o := Options{User: "garage", Pass: "s3cret", Host: "db.internal", Port: "3306", Name: "garage"}
	assert.Equal(t,
		"garage:s3cret@tcp(db.internal:3306)/garage?charset=utf8mb4&parseTime=true&loc=UTC",
		o.dsn())
}

func TestDSNWithoutPassword(t *testing.T) {
	o := Options{User: "root", Host: "localhost", Port: "3306", Name: "garage"}
	assert.Equal(t,
		"root@tcp(localhost:3306)/garage?charset=utf8mb4&parseTime=true&loc=UTC",
		o.dsn())
}

func TestPoolDefaults(t *testing.T) {
	d := Options{}.withDefaults()
	assert.Equal(t, 25, d.MaxOpenConns)
	assert.Equal(t, 25, d.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, d.ConnMaxLifetime)

	// Idle follows a configured ceiling; explicit values pass through.
	d = Options{MaxOpenConns: 10}.withDefaults()
	assert.Equal(t, 10, d.MaxIdleConns)

	d = Options{MaxOpenConns: 10, MaxIdleConns: 2, ConnMaxLifetime: time.Hour}.withDefaults()
	assert.Equal(t, 2, d.MaxIdleConns)
	assert.Equal(t, time.Hour, d.ConnMaxLifetime)
}
