package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/willjrcristo/go-pix-subscriptions/internal/domain"
)

// AssinaturaRepository define a interface para a persistência de assinaturas.
// Usar uma interface nos permite 'mockar' o repositório em testes e trocar a
// implementação do banco de dados facilmente.
type AssinaturaRepository interface {
	// FindByDevice retorna nil, nil quando não há assinatura para o device.
	FindByDevice(ctx context.Context, deviceID string) (*domain.Assinatura, error)

	// Upsert cria ou sobrescreve a assinatura do device em um único comando
	// atômico. Duas ativações simultâneas do mesmo device nunca geram dois
	// registros: a segunda vira um UPDATE.
	Upsert(ctx context.Context, assinatura domain.Assinatura) (*domain.Assinatura, error)

	// MarkExpired aplica a correção preguiçosa de status: marca como
	// "expired" somente se o registro ainda estiver "active" com a data de
	// expiração vencida. Retorna true se o status foi alterado.
	MarkExpired(ctx context.Context, deviceID string, agora time.Time) (bool, error)

	// UpdateStatus grava um novo status para o device.
	UpdateStatus(ctx context.Context, deviceID string, status domain.StatusAssinatura) error

	// Ping verifica se o banco está acessível. É a checagem de
	// disponibilidade usada pelos endpoints antes de qualquer operação.
	Ping(ctx context.Context) error
}

// sqliteRepository é a implementação do AssinaturaRepository para SQLite.
type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository cria uma nova instância do repositório de assinaturas.
func NewSQLiteRepository(db *sql.DB) AssinaturaRepository {
	return &sqliteRepository{
		db: db,
	}
}

const colunasAssinatura = `device_id, transaction_id, payment_method, amount, status,
	start_date, expiry_date, device_platform, device_model, device_version,
	created_at, updated_at`

func (r *sqliteRepository) FindByDevice(ctx context.Context, deviceID string) (*domain.Assinatura, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+colunasAssinatura+` FROM subscriptions WHERE device_id = ?`, deviceID)

	var a domain.Assinatura
	var platform, model, version sql.NullString
	err := row.Scan(&a.DeviceID, &a.TransactionID, &a.PaymentMethod, &a.Amount, &a.Status,
		&a.StartDate, &a.ExpiryDate, &platform, &model, &version,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			// Ausência de assinatura não é erro: devolvemos nil, nil.
			return nil, nil
		}
		return nil, err
	}

	if platform.Valid || model.Valid || version.Valid {
		a.DeviceInfo = &domain.DeviceInfo{
			Platform: platform.String,
			Model:    model.String,
			Version:  version.String,
		}
	}

	return &a, nil
}

func (r *sqliteRepository) Upsert(ctx context.Context, assinatura domain.Assinatura) (*domain.Assinatura, error) {
	// ON CONFLICT garante a invariante de um registro por device e serializa
	// ativações concorrentes do mesmo device_id dentro do próprio banco.
	// device_info é preservada no conflito quando a nova requisição não
	// enviou nenhuma (COALESCE mantém os valores anteriores).
	var platform, model, version any
	if assinatura.DeviceInfo != nil {
		platform = assinatura.DeviceInfo.Platform
		model = assinatura.DeviceInfo.Model
		version = assinatura.DeviceInfo.Version
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (`+colunasAssinatura+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			transaction_id  = excluded.transaction_id,
			payment_method  = excluded.payment_method,
			amount          = excluded.amount,
			status          = excluded.status,
			start_date      = excluded.start_date,
			expiry_date     = excluded.expiry_date,
			device_platform = COALESCE(excluded.device_platform, device_platform),
			device_model    = COALESCE(excluded.device_model, device_model),
			device_version  = COALESCE(excluded.device_version, device_version),
			updated_at      = excluded.updated_at`,
		assinatura.DeviceID, assinatura.TransactionID, assinatura.PaymentMethod,
		assinatura.Amount, assinatura.Status,
		assinatura.StartDate.UTC(), assinatura.ExpiryDate.UTC(),
		platform, model, version,
		assinatura.CreatedAt.UTC(), assinatura.UpdatedAt.UTC())
	if err != nil {
		return nil, err
	}

	return r.FindByDevice(ctx, assinatura.DeviceID)
}

func (r *sqliteRepository) MarkExpired(ctx context.Context, deviceID string, agora time.Time) (bool, error) {
	// Um único UPDATE condicional: leitores concorrentes nunca observam um
	// estado intermediário entre avaliar o predicado e gravar o novo status.
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = ?, updated_at = ?
		WHERE device_id = ? AND status = ? AND expiry_date <= ?`,
		domain.StatusExpirada, agora.UTC(), deviceID, domain.StatusAtiva, agora.UTC())
	if err != nil {
		return false, err
	}

	alteradas, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return alteradas > 0, nil
}

func (r *sqliteRepository) UpdateStatus(ctx context.Context, deviceID string, status domain.StatusAssinatura) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET status = ?, updated_at = ? WHERE device_id = ?`,
		status, time.Now().UTC(), deviceID)
	return err
}

func (r *sqliteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
