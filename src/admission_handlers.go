package main

import (
	"hms/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func admissionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/admissions", func(ctx *gin.Context) {
			var body types.RequestAdmissionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			admission, err := service.RequestAdmission(actor, body.PatientID, body.WardID, body.BedID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": admission})
		}).
		GET("/admissions", func(ctx *gin.Context) {
			actor := actorFromContext(ctx)
			admissions, err := service.PendingAdmissions(actor)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": admissions})
		}).
		GET("/admissions/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			admission, err := service.GetAdmission(actor, params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": admission})
		}).
		PUT("/admissions/:id/confirm", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			if err := withRetry(func() error {
				return service.ConfirmAdmission(actor, params.ID)
			}); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PUT("/admissions/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			if err := withRetry(func() error {
				return service.CancelAdmission(actor, params.ID)
			}); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PUT("/admissions/:id/discharge", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.DischargeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			if err := withRetry(func() error {
				return service.DischargePatient(actor, params.ID, body.Summary)
			}); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PUT("/admissions/:id/transfer", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.TransferRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			if err := withRetry(func() error {
				return service.TransferPatient(actor, params.ID, body.WardID, body.BedID)
			}); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		GET("/patients/:id/admissions", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			actor := actorFromContext(ctx)
			admissions, err := service.AdmissionHistory(actor, params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": admissions})
		})
	return g
}
