package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TxRunner executes multi-entity writes inside a mongo session transaction so
// that the conversion protocol commits or rolls back as one unit
type TxRunner struct {
	Client ClientHelper
}

// NewTxRunner creates a transaction runner over the given client
func NewTxRunner(client ClientHelper) *TxRunner {
	return &TxRunner{Client: client}
}

// WithTransaction runs fn within a session transaction. When the deployment
// does not support sessions (standalone mongo in local dev), fn runs directly
// and the loss of atomicity is logged once per call.
func (t *TxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.Client.StartSession()
	if err != nil {
		zap.S().Warnw("sessions unavailable, running without transaction", "error", err)
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
