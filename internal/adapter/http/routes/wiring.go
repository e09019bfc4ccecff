package routes

import (
	"context"

	"mecanica_booking/internal/adapter/http/handlers"
	"mecanica_booking/internal/adapter/persistence/catalog"
	"mecanica_booking/internal/adapter/persistence/memory"
	"mecanica_booking/internal/adapter/persistence/repository"
	"mecanica_booking/internal/infrastructure/config"
	"mecanica_booking/internal/infrastructure/database"
	"mecanica_booking/internal/infrastructure/invoice"
	"mecanica_booking/internal/infrastructure/lock"
	"mecanica_booking/internal/infrastructure/metrics"
	"mecanica_booking/internal/infrastructure/payments"
	"mecanica_booking/internal/usecase"
	"mecanica_booking/internal/usecase/interfaces"

	"github.com/juju/clock"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

// Storage bundles the repositories of the selected driver.
type Storage struct {
	Bookings interfaces.IBookingRepository
	Jobs     interfaces.IJobRepository
	Quotes   interfaces.IQuoteRepository
	Billing  interfaces.IBillingPaymentRepository
	Catalog  interfaces.ICatalogRepository

	closers []func() error
}

func (s Storage) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewMemoryStorage serves every repository from one in-process store.
func NewMemoryStorage(store *memory.Store) Storage {
	return Storage{
		Bookings: store.Bookings(),
		Jobs:     store.Jobs(),
		Quotes:   store.Quotes(),
		Billing:  store.Billing(),
		Catalog:  store.Catalog(),
	}
}

// OpenStorage connects the workflow tables (DynamoDB or memory) and the
// reference-data catalog (MySQL, or the seed file loaded into memory).
func OpenStorage(ctx context.Context, cfg config.Config) (Storage, error) {
	store := memory.NewStore()
	var s Storage

	switch cfg.StorageDriver {
	case config.StorageMemory:
		s = NewMemoryStorage(store)
	case config.StorageDynamoDB:
		ddb, err := database.ConnectDynamoDB(ctx)
		if err != nil {
			return Storage{}, err
		}
		tables := repository.Tables(cfg.Tables)
		s = Storage{
			Bookings: repository.NewBookingDynamoRepository(ddb, tables),
			Jobs:     repository.NewJobDynamoRepository(ddb, tables),
			Quotes:   repository.NewQuoteDynamoRepository(ddb, tables),
			Billing:  repository.NewBillingPaymentDynamoRepository(ddb, tables),
		}
	default:
		return Storage{}, errors.NotSupportedf("storage driver %q", cfg.StorageDriver)
	}

	if cfg.CatalogDSN != "" {
		db, err := database.ConnectMySQL(ctx, cfg.CatalogDSN)
		if err != nil {
			return Storage{}, err
		}
		s.Catalog = catalog.NewMySQLCatalogRepository(db)
		s.closers = append(s.closers, db.Close)
		return s, nil
	}

	if cfg.CatalogSeedFile != "" {
		if err := store.LoadCatalogFile(cfg.CatalogSeedFile); err != nil {
			return Storage{}, err
		}
	} else {
		log.Warn("[storage] no CATALOG_DSN or CATALOG_SEED_FILE; catalog is empty")
	}
	s.Catalog = store.Catalog()
	return s, nil
}

// Handlers are the HTTP handlers of every resource.
type Handlers struct {
	Bookings     *handlers.BookingHandler
	Availability *handlers.AvailabilityHandler
	Jobs         *handlers.JobHandler
	Quotes       *handlers.QuoteHandler
	Billing      *handlers.BillingPaymentHandler
}

// NewHandlers builds the use cases over storage and wraps them in handlers.
// collector may be nil.
func NewHandlers(s Storage, cfg config.Config, clk clock.Clock, collector *metrics.Collector) Handlers {
	var observer interfaces.IWorkflowObserver
	if collector != nil {
		observer = collector
	}
	locks := lock.NewTable(cfg.LockTimeout, clk)

	var gateway interfaces.IPaymentGateway
	mpGateway, err := payments.NewMercadoPagoGateway(cfg.Payment.AccessToken, cfg.Payment.MockMode)
	if err != nil {
		log.WithError(err).Warn("Mercado Pago gateway not configured; checkout disabled")
	} else {
		gateway = mpGateway
	}

	availabilityUseCase := usecase.NewAvailabilityUseCase(s.Bookings, s.Catalog, cfg.Location)
	bookingUseCase := usecase.NewBookingUseCase(s.Bookings, s.Jobs, s.Catalog, availabilityUseCase, locks, clk, observer)
	jobUseCase := usecase.NewJobUseCase(s.Jobs, clk, observer)
	quoteUseCase := usecase.NewQuoteUseCase(s.Quotes, s.Bookings, clk, observer)
	billingUseCase := usecase.NewBillingPaymentUseCase(
		s.Billing, s.Bookings, s.Catalog, gateway,
		invoice.NewPDFRenderer(cfg.ShopName, cfg.Location),
		locks, clk, observer,
		usecase.PaymentSettings{
			MockMode:        cfg.Payment.MockMode,
			AccessToken:     cfg.Payment.AccessToken,
			TestPayerEmail:  cfg.Payment.TestPayerEmail,
			TestPayerUserID: cfg.Payment.TestPayerUserID,
		},
	)

	return Handlers{
		Bookings:     handlers.NewBookingHandler(bookingUseCase, jobUseCase, availabilityUseCase),
		Availability: handlers.NewAvailabilityHandler(availabilityUseCase),
		Jobs:         handlers.NewJobHandler(jobUseCase, bookingUseCase),
		Quotes:       handlers.NewQuoteHandler(quoteUseCase, bookingUseCase),
		Billing:      handlers.NewBillingPaymentHandler(billingUseCase, bookingUseCase, clk, cfg.Payment.MockMode),
	}
}
