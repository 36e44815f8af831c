package main

import (
	"hms/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func handoverHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/handovers", func(ctx *gin.Context) {
			var body types.HandoverRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			entry, err := service.HandoverShift(actor, body.ToStaffID, body.IncludeAppointments, body.IncludePatients)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": entry})
		}).
		GET("/handovers", func(ctx *gin.Context) {
			actor := actorFromContext(ctx)
			entries, err := service.ListHandovers(actor)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entries})
		})
	return g
}
