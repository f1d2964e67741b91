package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fitflow/gymfit_backend/config"
	"github.com/fitflow/gymfit_backend/models"
)

// QuoteController manages the motivational quotes rotated on the site
type QuoteController struct {
	DB *mongo.Client
}

func NewQuoteController(db *mongo.Client) *QuoteController {
	return &QuoteController{DB: db}
}

// GetQuotes lists quotes; public callers see active ones only
func (qc *QuoteController) GetQuotes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"isActive": true}
	if isAdminRequest(c) {
		filter = bson.M{}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection(qc.DB, "quotes").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch quotes",
		})
	}
	defer cursor.Close(ctx)

	var quotes []models.Quote
	if err := cursor.All(ctx, &quotes); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode quotes",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Quotes retrieved",
		Data:    quotes,
	})
}

// CreateQuote adds a quote
func (qc *QuoteController) CreateQuote(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Quote text is required",
		})
	}

	now := time.Now()
	quote := models.Quote{
		ID:        primitive.NewObjectID(),
		Text:      req.Text,
		Author:    req.Author,
		IsActive:  req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := config.GetCollection(qc.DB, "quotes").InsertOne(ctx, quote); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create quote",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Quote created",
		Data:    quote,
	})
}

// UpdateQuote modifies a quote
func (qc *QuoteController) UpdateQuote(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	quoteID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid quote ID",
		})
	}

	var req models.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Quote text is required",
		})
	}

	result, err := config.GetCollection(qc.DB, "quotes").UpdateOne(ctx, bson.M{"_id": quoteID}, bson.M{"$set": bson.M{
		"text":      req.Text,
		"author":    req.Author,
		"isActive":  req.IsActive,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update quote",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Quote not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Quote updated",
	})
}

// DeleteQuote removes a quote
func (qc *QuoteController) DeleteQuote(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	quoteID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid quote ID",
		})
	}

	result, err := config.GetCollection(qc.DB, "quotes").DeleteOne(ctx, bson.M{"_id": quoteID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete quote",
		})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Quote not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Quote deleted",
	})
}
