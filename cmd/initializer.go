package main

import (
	"database/sql"
	"log"
	"time"

	"firebase.google.com/go/messaging"
	"github.com/redis/go-redis/v9"

	"tamaqBack/internal/config"
	"tamaqBack/internal/delivery"
	"tamaqBack/internal/delivery/engine"
	"tamaqBack/internal/delivery/geo"
	"tamaqBack/internal/delivery/repo"
	"tamaqBack/internal/delivery/schedule"
	"tamaqBack/internal/delivery/ws"
	"tamaqBack/internal/handlers"
	"tamaqBack/internal/notify"
	"tamaqBack/internal/repositories"
	"tamaqBack/internal/services"
	"tamaqBack/utils"
)

type application struct {
	errorLog   *log.Logger
	infoLog    *log.Logger
	db         *sql.DB
	signingKey string
	accessTTL  time.Duration

	userRepo *repositories.UserRepository

	userHandler  *handlers.UserHandler
	storeHandler *handlers.StoreHandler
	menuHandler  *handlers.MenuHandler
	orderHandler *handlers.OrderHandler

	hub       *ws.OrderHub
	scheduler *schedule.Scheduler
}

func initializeApp(db *sql.DB, rdb *redis.Client, fcmClient *messaging.Client, cfg config.Config, deliveryCfg delivery.Config, errorLog, infoLog *log.Logger) (*application, error) {
	logger := &appLogger{infoLog: infoLog, errorLog: errorLog}

	accessTTL := time.Duration(cfg.Auth.AccessTTLMinutes) * time.Minute
	tokenManager, err := utils.NewManager(cfg.Auth.SigningKey, accessTTL)
	if err != nil {
		return nil, err
	}

	// Repositories
	userRepo := &repositories.UserRepository{DB: db}
	storeRepo := &repositories.StoreRepository{DB: db}
	menuRepo := &repositories.MenuRepository{DB: db}
	orderRepo := &repositories.OrderRepository{DB: db}
	deliveryOrders := repo.NewOrdersRepo(db)
	deliveryTransitions := repo.NewTransitionsRepo(db)

	// Delivery core
	hub := ws.NewOrderHub(cfg.Auth.SigningKey, logger)
	mailer := notify.NewEmailSender(cfg.Notifications.EmailEndpoint, cfg.Notifications.EmailAPIKey, cfg.Notifications.EmailFromName, cfg.Notifications.EmailFromAddress)
	eng := engine.New(deliveryOrders, deliveryTransitions, hub, mailer, logger, deliveryCfg)
	scheduler := schedule.New(deliveryTransitions, eng, logger, deliveryCfg.PollTick)

	// Services
	userService := &services.UserService{
		Users:  userRepo,
		Tokens: tokenManager,
		SMS:    notify.NewSMSSender("", cfg.Notifications.SMSAPIKey),
		Logger: logger,
	}
	storeService := &services.StoreService{
		Stores:   storeRepo,
		Locator:  geo.NewStoreLocator(rdb),
		Announce: hub,
		Logger:   logger,
	}
	menuService := &services.MenuService{
		Menu:   menuRepo,
		Stores: storeRepo,
		Logger: logger,
	}
	orderService := &services.OrderService{
		Orders: orderRepo,
		Menu:   menuRepo,
		Stores: storeRepo,
		Users:  userRepo,
		Push:   notify.NewPush(fcmClient),
		Logger: logger,
	}

	return &application{
		errorLog:     errorLog,
		infoLog:      infoLog,
		db:           db,
		signingKey:   cfg.Auth.SigningKey,
		accessTTL:    accessTTL,
		userRepo:     userRepo,
		userHandler:  &handlers.UserHandler{Service: userService},
		storeHandler: &handlers.StoreHandler{Service: storeService},
		menuHandler:  &handlers.MenuHandler{Service: menuService},
		orderHandler: &handlers.OrderHandler{Service: orderService, Engine: eng, Tracker: deliveryOrders},
		hub:          hub,
		scheduler:    scheduler,
	}, nil
}
