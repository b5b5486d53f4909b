package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/store-backend/internal/app"
	"github.com/linemk/store-backend/internal/app/handlers"
	"github.com/linemk/store-backend/internal/auth"
	"github.com/linemk/store-backend/internal/config"
	"github.com/linemk/store-backend/internal/lib/logger"
	"github.com/linemk/store-backend/internal/lib/logger/handlers/urllog"
	"github.com/linemk/store-backend/internal/service"
	"github.com/linemk/store-backend/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	categoryRepo := storage.NewCategoryRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	itemRepo := storage.NewOrderItemRepository(application.DB)
	reviewRepo := storage.NewReviewRepository(application.DB)

	tokenTTL := time.Duration(application.Config.JWT.TokenTTL) * time.Minute
	refreshTTL := time.Duration(application.Config.JWT.RefreshTTL) * time.Minute

	authService := service.NewAuthService(application.Logger, userRepo, tokenTTL, refreshTTL)
	catalogService := service.NewCatalogService(application.Logger, categoryRepo, productRepo, reviewRepo)
	cartService := service.NewCartService(application.Logger, application.DB, orderRepo, itemRepo, productRepo)
	checkoutService := service.NewCheckoutService(application.Logger, application.DB, orderRepo, itemRepo, productRepo)
	reviewService := service.NewReviewService(application.Logger, productRepo, reviewRepo)
	orderService := service.NewOrderService(application.Logger, orderRepo, itemRepo)
	adminService := service.NewAdminService(application.Logger, userRepo, productRepo, orderRepo, reviewRepo)

	// публичные эндпоинты: каталог и аутентификация
	router.Post("/signup", handlers.SignupHandler(application.Logger, authService))
	router.Post("/api/token/", handlers.TokenHandler(application.Logger, authService))
	router.Post("/api/token/refresh/", handlers.TokenRefreshHandler(application.Logger, authService))
	router.Get("/api/categories/", handlers.CategoriesHandler(application.Logger, catalogService))
	router.Get("/api/category/{slug}/", handlers.CategoryProductsHandler(application.Logger, catalogService))
	router.Get("/api/products/", handlers.ProductsHandler(application.Logger, catalogService))
	router.Get("/api/product/{id}/", handlers.ProductDetailHandler(application.Logger, catalogService))

	// эндпоинты, требующие аутентификации
	router.Group(func(r chi.Router) {
		jwtMW := auth.NewMiddleware()
		r.Use(jwtMW)
		// отзыв о товаре
		r.Post("/api/product/{id}/", handlers.AddReviewHandler(application.Logger, reviewService))
		// корзина
		r.Get("/api/cart/", handlers.CartHandler(application.Logger, cartService))
		r.Post("/api/cart/add/{product_id}/", handlers.AddToCartHandler(application.Logger, cartService))
		r.Post("/api/cart/update/{item_id}/", handlers.UpdateCartHandler(application.Logger, cartService))
		// оформление заказа
		r.Post("/api/checkout/", handlers.CheckoutHandler(application.Logger, checkoutService))
		// история заказов
		r.Get("/api/my-orders/", handlers.MyOrdersHandler(application.Logger, orderService))
		r.Get("/api/order/{id}/", handlers.OrderDetailHandler(application.Logger, orderService))

		// админ-панель, только для сотрудников
		r.Group(func(ar chi.Router) {
			ar.Use(auth.RequireStaff)
			ar.Get("/api/dashboard/", handlers.DashboardHandler(application.Logger, adminService))
			ar.Get("/api/dashboard/products/", handlers.AdminProductsHandler(application.Logger, adminService))
			ar.Post("/api/dashboard/products/", handlers.CreateProductHandler(application.Logger, adminService))
			ar.Put("/api/dashboard/products/{id}/", handlers.UpdateProductHandler(application.Logger, adminService))
			ar.Delete("/api/dashboard/products/{id}/", handlers.DeleteProductHandler(application.Logger, adminService))
			ar.Get("/api/dashboard/orders/", handlers.AdminOrdersHandler(application.Logger, adminService))
			ar.Post("/api/dashboard/orders/{id}/status/", handlers.OrderStatusHandler(application.Logger, adminService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
