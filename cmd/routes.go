package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("customer"))
	storeAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("store"))

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/user/refresh", standardMiddleware.ThenFunc(app.userHandler.Refresh))
	mux.Post("/user/verify_code", standardMiddleware.ThenFunc(app.userHandler.VerifyCode))
	mux.Get("/user/me", authMiddleware.ThenFunc(app.userHandler.GetMe))
	mux.Post("/user/device_token", authMiddleware.ThenFunc(app.userHandler.SaveDeviceToken))

	// Stores
	mux.Post("/store", storeAuthMiddleware.ThenFunc(app.storeHandler.CreateStore))
	mux.Get("/store/nearby", authMiddleware.ThenFunc(app.storeHandler.Nearby))
	mux.Get("/store/mine", storeAuthMiddleware.ThenFunc(app.storeHandler.MyStores))
	mux.Get("/store/:id", authMiddleware.ThenFunc(app.storeHandler.GetStore))
	mux.Put("/store/:id", storeAuthMiddleware.ThenFunc(app.storeHandler.UpdateStore))
	mux.Get("/stores", authMiddleware.ThenFunc(app.storeHandler.ListByCity))

	// Menu
	mux.Post("/menu", storeAuthMiddleware.ThenFunc(app.menuHandler.CreateMenuItem))
	mux.Get("/menu/store/:store_id", authMiddleware.ThenFunc(app.menuHandler.ListByStore))
	mux.Get("/menu/:id", authMiddleware.ThenFunc(app.menuHandler.GetMenuItem))
	mux.Put("/menu/:id", storeAuthMiddleware.ThenFunc(app.menuHandler.UpdateMenuItem))
	mux.Del("/menu/:id/store/:store_id", storeAuthMiddleware.ThenFunc(app.menuHandler.DeleteMenuItem))
	mux.Post("/menu/:id/image", storeAuthMiddleware.ThenFunc(app.menuHandler.UploadImage))

	// Orders
	mux.Post("/order/checkout", authMiddleware.ThenFunc(app.orderHandler.Checkout))
	mux.Get("/order/mine", authMiddleware.ThenFunc(app.orderHandler.MyOrders))
	mux.Get("/order/store/:store_id", storeAuthMiddleware.ThenFunc(app.orderHandler.StoreOrders))
	mux.Get("/order/track/:public_id", standardMiddleware.ThenFunc(app.orderHandler.Track))
	mux.Get("/order/:id", authMiddleware.ThenFunc(app.orderHandler.GetOrder))
	mux.Post("/order/:id/accept", storeAuthMiddleware.ThenFunc(app.orderHandler.Accept))
	mux.Post("/order/:id/cancel", storeAuthMiddleware.ThenFunc(app.orderHandler.Cancel))
	mux.Post("/order/:id/out_for_delivery", storeAuthMiddleware.ThenFunc(app.orderHandler.OutForDelivery))

	// Live status feed
	mux.Get("/ws/orders", http.HandlerFunc(app.hub.ServeWS))

	return mux
}
