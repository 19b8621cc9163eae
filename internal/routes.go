package internal

import (
	"net/http"
	"storybank/internal/controllers"
	"storybank/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, syncController *controllers.SyncController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/cache", http.HandlerFunc(apiController.ListKeys))
	routers.Delete("/cache", http.HandlerFunc(apiController.Clear))
	routers.Get("/cache/{key}", http.HandlerFunc(apiController.GetItem))
	routers.Put("/cache/{key}", http.HandlerFunc(apiController.SetItem))
	routers.Delete("/cache/{key}", http.HandlerFunc(apiController.RemoveItem))
	routers.Get("/activity", http.HandlerFunc(apiController.ListActivity))
	routers.Post("/activity", http.HandlerFunc(apiController.AddActivity))
	routers.Get("/stats", http.HandlerFunc(apiController.GetStats))
	routers.Patch("/stats", http.HandlerFunc(apiController.UpdateStats))
	routers.Get("/channels/{channelID}", http.HandlerFunc(apiController.GetChannel))
	routers.Put("/channels/{channelID}", http.HandlerFunc(apiController.PutChannel))
	routers.Get("/processing/{videoID}", http.HandlerFunc(apiController.GetProcessing))
	routers.Put("/processing/{videoID}", http.HandlerFunc(apiController.PutProcessing))

	routers.Post("/channels/{channelID}/refresh", http.HandlerFunc(syncController.RefreshChannel))
	routers.Post("/videos/{videoID}/process", http.HandlerFunc(syncController.ProcessVideo))
	routers.Post("/videos/process", http.HandlerFunc(syncController.ProcessBatch))
	routers.Get("/categories", http.HandlerFunc(syncController.ListCategories))
	routers.Post("/categories", http.HandlerFunc(syncController.CreateCategory))
	routers.Post("/stories/generate", http.HandlerFunc(syncController.GenerateStory))
	routers.Post("/stories/{storyID}/finalize", http.HandlerFunc(syncController.FinalizeStory))
	return routers
}
