package db

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options descreve a conexão com o Postgres. As credenciais ficam de fora:
// vêm de DB_USERNAME/DB_PASSWORD ou do Secrets Manager.
type Options struct {
	Host       string
	Port       uint
	Name       string
	SecretID   string
	SSLDisable bool
	MaxOpen    int
	MaxIdle    int
}

func OptionsFromEnv() Options {
	o := Options{
		Host:       os.Getenv("DB_HOST"),
		Port:       5432,
		Name:       os.Getenv("DB_NAME"),
		SecretID:   os.Getenv("DB_SECRET_ID"),
		SSLDisable: os.Getenv("DB_SSL_MODE_DISABLE") == "true",
		MaxOpen:    20,
		MaxIdle:    5,
	}
	if o.Host == "" {
		o.Host = "localhost"
	}
	if p, err := strconv.ParseUint(os.Getenv("DB_PORT"), 10, 32); err == nil {
		o.Port = uint(p)
	}
	if n, err := strconv.Atoi(os.Getenv("DB_MAX_OPEN_CONNS")); err == nil && n > 0 {
		o.MaxOpen = n
	}
	return o
}

func (o Options) DSN(username, password string) string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d", o.Host, username, password, o.Name, o.Port)
	if o.SSLDisable {
		dsn += " sslmode=disable"
	}
	return dsn
}

// Open resolve as credenciais, abre o pool e confirma a conexão com um ping.
func Open(ctx context.Context, o Options) (*gorm.DB, error) {
	username, password, err := retrieveCredentials(ctx, o.SecretID)
	if err != nil {
		return nil, fmt.Errorf("credenciais do banco: %w", err)
	}
	database, err := gorm.Open(postgres.Open(o.DSN(username, password)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.MaxOpen)
	sqlDB.SetMaxIdleConns(o.MaxIdle)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping no banco: %w", err)
	}
	return database, nil
}

func GetDB(ctx context.Context) (*gorm.DB, error) {
	return Open(ctx, OptionsFromEnv())
}

// Migrate cria/atualiza as tabelas dos modelos informados.
func Migrate(db *gorm.DB, models ...any) error {
	return db.AutoMigrate(models...)
}
