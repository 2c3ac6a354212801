package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/willjrcristo/go-pix-subscriptions/internal/domain"
)

func novoBancoTeste(t *testing.T) *sql.DB {
	t.Helper()

	caminho := filepath.Join(t.TempDir(), "teste.db")
	db, err := sql.Open("sqlite3", caminho+"?_busy_timeout=5000")
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.NoError(t, RunMigrations(db))
	return db
}

func assinaturaTeste(deviceID string) domain.Assinatura {
	agora := time.Now()
	return domain.Assinatura{
		DeviceID:      deviceID,
		TransactionID: "txn_1",
		PaymentMethod: domain.MetodoPix,
		Amount:        1990,
		Status:        domain.StatusAtiva,
		StartDate:     agora,
		ExpiryDate:    agora.AddDate(0, 0, 30),
		CreatedAt:     agora,
		UpdatedAt:     agora,
	}
}

func contaRegistros(t *testing.T, db *sql.DB, deviceID string) int {
	t.Helper()
	var total int
	err := db.QueryRow("SELECT COUNT(*) FROM subscriptions WHERE device_id = ?", deviceID).Scan(&total)
	assert.NoError(t, err)
	return total
}

func TestSQLiteRepository_Upsert(t *testing.T) {
	t.Run("cria e depois sobrescreve o mesmo registro", func(t *testing.T) {
		db := novoBancoTeste(t)
		repo := NewSQLiteRepository(db)
		ctx := context.Background()

		primeira := assinaturaTeste("device-1")
		salva, err := repo.Upsert(ctx, primeira)
		assert.NoError(t, err)
		assert.Equal(t, "txn_1", salva.TransactionID)
		assert.Equal(t, domain.StatusAtiva, salva.Status)
		assert.WithinDuration(t, primeira.ExpiryDate, salva.ExpiryDate, time.Second)

		segunda := assinaturaTeste("device-1")
		segunda.TransactionID = "txn_2"
		segunda.PaymentMethod = domain.MetodoCartao
		salva, err = repo.Upsert(ctx, segunda)
		assert.NoError(t, err)
		assert.Equal(t, "txn_2", salva.TransactionID)
		assert.Equal(t, domain.MetodoCartao, salva.PaymentMethod)

		// A invariante: um registro por device, sempre.
		assert.Equal(t, 1, contaRegistros(t, db, "device-1"))
	})

	t.Run("deviceInfo anterior é preservada quando a nova ativação não envia nenhuma", func(t *testing.T) {
		db := novoBancoTeste(t)
		repo := NewSQLiteRepository(db)
		ctx := context.Background()

		com := assinaturaTeste("device-info")
		com.DeviceInfo = &domain.DeviceInfo{Platform: "android", Model: "Pixel 7", Version: "14"}
		_, err := repo.Upsert(ctx, com)
		assert.NoError(t, err)

		sem := assinaturaTeste("device-info")
		sem.TransactionID = "txn_2"
		salva, err := repo.Upsert(ctx, sem)
		assert.NoError(t, err)
		assert.NotNil(t, salva.DeviceInfo)
		assert.Equal(t, "android", salva.DeviceInfo.Platform)
	})

	t.Run("ativações concorrentes do mesmo device resultam em um único registro", func(t *testing.T) {
		db := novoBancoTeste(t)
		repo := NewSQLiteRepository(db)
		ctx := context.Background()

		var wg sync.WaitGroup
		erros := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Upsert(ctx, assinaturaTeste("device-corrida"))
				erros <- err
			}()
		}
		wg.Wait()
		close(erros)

		// Nenhuma das ativações vê violação de chave: a segunda vira UPDATE.
		for err := range erros {
			assert.NoError(t, err)
		}
		assert.Equal(t, 1, contaRegistros(t, db, "device-corrida"))
	})
}

func TestSQLiteRepository_FindByDevice(t *testing.T) {
	t.Run("device sem registro devolve nil sem erro", func(t *testing.T) {
		repo := NewSQLiteRepository(novoBancoTeste(t))

		salva, err := repo.FindByDevice(context.Background(), "device-fantasma")
		assert.NoError(t, err)
		assert.Nil(t, salva)
	})
}

func TestSQLiteRepository_MarkExpired(t *testing.T) {
	t.Run("só corrige registro ativo com vigência vencida", func(t *testing.T) {
		db := novoBancoTeste(t)
		repo := NewSQLiteRepository(db)
		ctx := context.Background()

		vencida := assinaturaTeste("device-vencido")
		vencida.StartDate = time.Now().AddDate(0, 0, -40)
		vencida.ExpiryDate = time.Now().AddDate(0, 0, -10)
		_, err := repo.Upsert(ctx, vencida)
		assert.NoError(t, err)

		alterou, err := repo.MarkExpired(ctx, "device-vencido", time.Now())
		assert.NoError(t, err)
		assert.True(t, alterou)

		salva, err := repo.FindByDevice(ctx, "device-vencido")
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusExpirada, salva.Status)

		// Segunda passada: nada a corrigir.
		alterou, err = repo.MarkExpired(ctx, "device-vencido", time.Now())
		assert.NoError(t, err)
		assert.False(t, alterou)
	})

	t.Run("registro ativo e vigente não é tocado", func(t *testing.T) {
		db := novoBancoTeste(t)
		repo := NewSQLiteRepository(db)
		ctx := context.Background()

		_, err := repo.Upsert(ctx, assinaturaTeste("device-ok"))
		assert.NoError(t, err)

		alterou, err := repo.MarkExpired(ctx, "device-ok", time.Now())
		assert.NoError(t, err)
		assert.False(t, alterou)

		salva, _ := repo.FindByDevice(ctx, "device-ok")
		assert.Equal(t, domain.StatusAtiva, salva.Status)
	})
}

func TestSQLiteRepository_UpdateStatus(t *testing.T) {
	t.Run("grava o novo status e atualiza updated_at", func(t *testing.T) {
		db := novoBancoTeste(t)
		repo := NewSQLiteRepository(db)
		ctx := context.Background()

		original := assinaturaTeste("device-cancela")
		_, err := repo.Upsert(ctx, original)
		assert.NoError(t, err)

		assert.NoError(t, repo.UpdateStatus(ctx, "device-cancela", domain.StatusCancelada))

		salva, err := repo.FindByDevice(ctx, "device-cancela")
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusCancelada, salva.Status)
		assert.True(t, !salva.UpdatedAt.Before(original.UpdatedAt.Truncate(time.Second)))
	})
}
