package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fixerhub/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// codeIllegalOperation is returned by a standalone mongod for any command that carries a
// transaction number.
const codeIllegalOperation = 20

// standalone remembers clients whose deployment rejected a transaction.
var standalone sync.Map

// RunInTransaction executes fn inside a multi-document transaction on client. fn must use the
// session context for every operation that belongs to the transaction.
//
// On a standalone mongod, which has no transactions, fn runs once on a plain session and its
// writes land one by one. Counters that drift that way are repaired by reconciliation.
func RunInTransaction(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	if _, ok := standalone.Load(client); ok {
		return mongo.WithSession(ctx, sess, fn)
	}

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return fmt.Errorf("start transaction: %w", err)
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
	if err == nil || !TransactionsUnsupported(err) {
		return err
	}

	// The first command of fn was rejected, so nothing was written.
	if _, loaded := standalone.LoadOrStore(client, struct{}{}); !loaded {
		utils.GetLogger().Warn("mongo deployment has no transactions, writing without them", zap.Error(err))
	}
	return mongo.WithSession(ctx, sess, fn)
}

// TransactionsUnsupported reports whether err means the deployment cannot run transactions.
func TransactionsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	// IllegalOperation is also used for other rejections inside a transaction.
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCodeWithMessage(codeIllegalOperation, "Transaction numbers are only allowed")
}
