package main

import (
	"hms/src/config"
	"hms/src/types"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func appointmentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/appointments", func(ctx *gin.Context) {
			var body types.BookAppointmentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			scheduledTime, err := time.Parse(config.TIME_PARSE_FORMAT, body.ScheduledTime)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var note *string
			if body.Note != "" {
				note = &body.Note
			}
			actor := actorFromContext(ctx)
			appointment, err := service.BookAppointment(actor, body.PatientID, body.StaffID, scheduledTime, body.Type, note)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": appointment})
		}).
		GET("/appointments", func(ctx *gin.Context) {
			var query types.AppointmentQueryFilters
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			staffId := query.Staff
			if staffId == 0 {
				staffId = actor.ID
			}
			appointments, err := service.ListAppointments(actor, staffId, types.AppointmentStatus(query.Status))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": appointments})
		}).
		PUT("/appointments/:id/assign", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.AssignAppointmentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			if err := withRetry(func() error {
				return service.AssignToDoctor(actor, params.ID, body.StaffID)
			}); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PUT("/appointments/:id/confirm", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			if err := withRetry(func() error {
				return service.ConfirmAppointment(actor, params.ID)
			}); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PUT("/appointments/:id/complete", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			if err := withRetry(func() error {
				return service.CompleteAppointment(actor, params.ID)
			}); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PUT("/appointments/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			if err := withRetry(func() error {
				return service.CancelAppointment(actor, params.ID)
			}); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		GET("/appointments/:id/last-visited", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			appointment, err := service.LastVisited(actor, params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": appointment})
		})
	return g
}
