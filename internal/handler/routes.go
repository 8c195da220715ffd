package handler

import "github.com/gin-gonic/gin"

// Routes groups the API handlers mounted under the API prefix.
type Routes struct {
	Students    *StudentHandler
	Imports     *ImportHandler
	Statistics  *StatisticsHandler
	WaitingList *WaitingListHandler
}

// Register mounts every API route on the group.
func (r Routes) Register(api *gin.RouterGroup) {
	students := api.Group("/students")
	students.GET("", r.Students.List)
	students.POST("", r.Students.Create)
	students.GET("/export", r.Students.Export)
	students.GET("/:epId", r.Students.Get)
	students.PUT("/:epId", r.Students.Update)
	students.POST("/:epId/withdraw", r.Students.Withdraw)

	api.POST("/imports", r.Imports.Import)

	api.GET("/statistics", r.Statistics.Summary)
	api.GET("/statistics/export", r.Statistics.Export)

	api.GET("/waiting-list", r.WaitingList.List)
	api.POST("/waiting-list", r.WaitingList.Create)
}
