package internal

import (
	"net/http"
	"tokend/internal/controllers"
	"tokend/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, adminController *controllers.AdminController, prefsController *controllers.PreferencesController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/status", http.HandlerFunc(apiController.GetStatus))
	routers.Post("/consume", http.HandlerFunc(apiController.Consume))
	routers.Post("/reconcile", http.HandlerFunc(apiController.Reconcile))
	routers.Get("/countdown", http.HandlerFunc(apiController.GetCountdown))
	routers.Post("/signout", http.HandlerFunc(apiController.SignOut))
	routers.Post("/admin/arrival", http.HandlerFunc(adminController.SetArrival))
	routers.Get("/admin/pending", http.HandlerFunc(adminController.Pending))
	routers.Get("/preferences", http.HandlerFunc(prefsController.Get))
	routers.Post("/preferences", http.HandlerFunc(prefsController.Update))
	return routers
}
