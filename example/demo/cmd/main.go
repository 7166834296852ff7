package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/signalcraft/transactional-signals-go/example/core"
	"github.com/signalcraft/transactional-signals-go/example/shell"
	"github.com/signalcraft/transactional-signals-go/example/shell/config"
	"github.com/signalcraft/transactional-signals-go/signals"
	"github.com/signalcraft/transactional-signals-go/signals/pgengine"
)

var errSimulatedFailure = errors.New("simulated business rule violation")

func main() {
	ctx := context.Background()

	registry, err := signals.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to create registry: %v", err)
	}

	connectReceivers(registry)

	dispatcher, cleanup, err := initializeDispatcher(ctx, registry)
	if err != nil {
		log.Fatalf("Failed to create dispatcher: %v", err)
	}
	defer cleanup()

	runCommittedSignup(ctx, dispatcher)
	runRolledBackSignup(ctx, dispatcher)
	printJournal(ctx, dispatcher)
}

func connectReceivers(registry *signals.Registry) {
	receiverID, err := registry.Connect(
		core.UserSignedUpSignalName,
		shell.ProjectUserProfile,
		signals.WithDispatchID("project-user-profile-on-signup"),
	)
	if err != nil {
		log.Fatalf("Failed to connect receiver: %v", err)
	}
	log.Printf("Connected profile projection for %s as %s", core.UserSignedUpSignalName, receiverID)

	receiverID, err = registry.Connect(
		core.UserEmailChangedSignalName,
		shell.ProjectUserProfile,
		signals.WithDispatchID("project-user-profile-on-email-change"),
	)
	if err != nil {
		log.Fatalf("Failed to connect receiver: %v", err)
	}
	log.Printf("Connected profile projection for %s as %s", core.UserEmailChangedSignalName, receiverID)
}

func initializeDispatcher(ctx context.Context, registry *signals.Registry) (*pgengine.Dispatcher, func(), error) {
	// The database adapter type can be chosen via environment variable (default: pgx)
	adapterType := strings.ToLower(os.Getenv("DB_ADAPTER"))
	if adapterType == "" {
		adapterType = "pgx"
	}

	log.Printf("Using database adapter: %s", strings.ToUpper(adapterType))

	switch adapterType {
	case "pgx":
		pool, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolConfig())
		if err != nil {
			return nil, nil, err
		}

		dispatcher, err := pgengine.NewDispatcherFromPGXPool(pool, registry)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		return dispatcher, pool.Close, nil

	case "sql", "sql.db":
		db := config.PostgresSQLDBConfig()
		dispatcher, err := pgengine.NewDispatcherFromSQLDB(db, registry)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return dispatcher, func() { _ = db.Close() }, nil

	case "sqlx":
		db := config.PostgresSQLXConfig()
		dispatcher, err := pgengine.NewDispatcherFromSQLX(db, registry)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return dispatcher, func() { _ = db.Close() }, nil

	default:
		return nil, nil, errors.New("unknown database adapter: " + adapterType + " (supported: pgx, sql, sqlx)")
	}
}

func runCommittedSignup(ctx context.Context, dispatcher *pgengine.Dispatcher) {
	userID := uuid.New()
	signal := core.BuildUserSignedUp(userID, "ada@example.com", "Ada Lovelace", time.Now())

	err := dispatcher.Execute(ctx, func(ctx context.Context, scope *pgengine.Scope) error {
		notification, buildErr := notificationFor(signal)
		if buildErr != nil {
			return buildErr
		}

		_, sendErr := scope.Send(ctx, notification)

		return sendErr
	})
	if err != nil {
		log.Fatalf("Committed signup failed: %v", err)
	}

	log.Printf("Signup for user %s committed, profile row and journal entry are visible", userID)
}

func runRolledBackSignup(ctx context.Context, dispatcher *pgengine.Dispatcher) {
	userID := uuid.New()
	signal := core.BuildUserSignedUp(userID, "bob@example.com", "Bob", time.Now())

	err := dispatcher.Execute(ctx, func(ctx context.Context, scope *pgengine.Scope) error {
		notification, buildErr := notificationFor(signal)
		if buildErr != nil {
			return buildErr
		}

		if _, sendErr := scope.Send(ctx, notification); sendErr != nil {
			return sendErr
		}

		// Failing after the send rolls back the receiver's writes together
		// with everything else done in this unit of work.
		return errSimulatedFailure
	})

	if errors.Is(err, errSimulatedFailure) {
		log.Printf("Signup for user %s rolled back, no profile row and no journal entry remain", userID)
		return
	}

	log.Fatalf("Expected the simulated failure, got: %v", err)
}

func printJournal(ctx context.Context, dispatcher *pgengine.Dispatcher) {
	records, err := dispatcher.JournaledDeliveries(ctx, core.UserSignedUpSignalName)
	if err != nil {
		log.Fatalf("Failed to query the delivery journal: %v", err)
	}

	log.Printf("Journal holds %d deliveries for %s", len(records), core.UserSignedUpSignalName)
	for _, record := range records {
		log.Printf("  receiver=%s occurred_at=%s", record.ReceiverID, record.OccurredAt.Format(time.RFC3339))
	}
}

func notificationFor(signal core.DomainSignal) (signals.Notification, error) {
	metadata := shell.BuildSignalMetadata(uuid.New(), uuid.New(), uuid.New())

	return shell.NotificationFrom(signal, metadata)
}
