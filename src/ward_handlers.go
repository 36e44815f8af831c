package main

import (
	"hms/src/types"
	"hms/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func wardHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/wards", func(ctx *gin.Context) {
			actor := actorFromContext(ctx)
			wards, err := service.ListWards(actor)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": wards})
		}).
		POST("/wards", func(ctx *gin.Context) {
			actor := actorFromContext(ctx)
			if actor.Role == types.ROLE_NURSE {
				ctx.Status(http.StatusForbidden)
				return
			}
			var body types.CreateWardRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ward, err := service.CreateWard(actor, body.Name, body.TotalBeds)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": ward})
		}).
		GET("/wards/:id/beds", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			beds, err := service.ListBeds(actor, params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": beds})
		}).
		GET("/wards/:id/occupancy", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			stats, err := utils.CachedWardOccupancy(service, actor, params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": stats})
		})
	return g
}
