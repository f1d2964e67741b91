package controllers

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fitflow/gymfit_backend/config"
	"github.com/fitflow/gymfit_backend/models"
	"github.com/fitflow/gymfit_backend/utils"
)

// TrainerController manages trainer profiles, including photo and intro
// video uploads with generated thumbnails.
type TrainerController struct {
	DB     *mongo.Client
	logger *log.Logger
}

func NewTrainerController(db *mongo.Client) *TrainerController {
	return &TrainerController{
		DB:     db,
		logger: log.New(os.Stdout, "[TRAINER] ", log.LstdFlags),
	}
}

// GetTrainers lists trainer profiles; public callers see active ones only
func (tc *TrainerController) GetTrainers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"isActive": true}
	if isAdminRequest(c) {
		filter = bson.M{}
	}

	opts := options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}})
	cursor, err := config.GetCollection(tc.DB, "trainers").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch trainers",
		})
	}
	defer cursor.Close(ctx)

	var trainers []models.Trainer
	if err := cursor.All(ctx, &trainers); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode trainers",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Trainers retrieved",
		Data:    trainers,
	})
}

// GetTrainer returns one trainer profile
func (tc *TrainerController) GetTrainer(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	trainerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid trainer ID",
		})
	}

	var trainer models.Trainer
	err = config.GetCollection(tc.DB, "trainers").FindOne(ctx, bson.M{"_id": trainerID}).Decode(&trainer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Trainer not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch trainer",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Trainer retrieved",
		Data:    trainer,
	})
}

// CreateTrainer adds a trainer profile from a multipart form
func (tc *TrainerController) CreateTrainer(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var req models.TrainerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Trainer name is required",
		})
	}

	now := time.Now()
	trainer := models.Trainer{
		ID:         primitive.NewObjectID(),
		FullName:   req.FullName,
		Speciality: req.Speciality,
		Bio:        req.Bio,
		YearsExp:   req.YearsExp,
		Instagram:  req.Instagram,
		IsActive:   req.IsActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := tc.attachMedia(c, &trainer); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if _, err := config.GetCollection(tc.DB, "trainers").InsertOne(ctx, trainer); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create trainer",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Trainer created",
		Data:    trainer,
	})
}

// UpdateTrainer modifies a trainer profile
func (tc *TrainerController) UpdateTrainer(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	trainerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid trainer ID",
		})
	}

	var req models.TrainerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Trainer name is required",
		})
	}

	update := bson.M{
		"fullName":        req.FullName,
		"speciality":      req.Speciality,
		"bio":             req.Bio,
		"yearsExperience": req.YearsExp,
		"instagram":       req.Instagram,
		"isActive":        req.IsActive,
		"updatedAt":       time.Now(),
	}

	var media models.Trainer
	if err := tc.attachMedia(c, &media); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if media.Photo != "" {
		update["photo"] = media.Photo
		update["photoThumb"] = media.PhotoThumb
	}
	if media.IntroVideo != "" {
		update["introVideo"] = media.IntroVideo
		update["introVideoThumb"] = media.IntroVideoThumb
	}

	result, err := config.GetCollection(tc.DB, "trainers").UpdateOne(ctx, bson.M{"_id": trainerID}, bson.M{"$set": update})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update trainer",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Trainer not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Trainer updated",
	})
}

// DeleteTrainer removes a trainer profile
func (tc *TrainerController) DeleteTrainer(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	trainerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid trainer ID",
		})
	}

	result, err := config.GetCollection(tc.DB, "trainers").DeleteOne(ctx, bson.M{"_id": trainerID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete trainer",
		})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Trainer not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Trainer deleted",
	})
}

// attachMedia stores any uploaded photo and intro video and fills in the
// trainer's media paths. Thumbnails are best-effort.
func (tc *TrainerController) attachMedia(c echo.Context, trainer *models.Trainer) error {
	if photoHeader, err := c.FormFile("photo"); err == nil {
		if err := utils.ValidateFileType(photoHeader.Filename, "image"); err != nil {
			return err
		}
		data, err := readMultipartFile(photoHeader)
		if err != nil {
			return err
		}
		path, err := utils.UploadFileToPath(data, photoHeader.Filename, "image", "trainers")
		if err != nil {
			return err
		}
		trainer.Photo = path
		if thumb, err := utils.GenerateImageThumbnail(path); err != nil {
			tc.logger.Printf("Photo thumbnail failed for %s: %v", path, err)
		} else {
			trainer.PhotoThumb = thumb
		}
	}

	if videoHeader, err := c.FormFile("introVideo"); err == nil {
		if err := utils.ValidateFileType(videoHeader.Filename, "video"); err != nil {
			return err
		}
		data, err := readMultipartFile(videoHeader)
		if err != nil {
			return err
		}
		path, err := utils.UploadFileToPath(data, videoHeader.Filename, "video", "trainers")
		if err != nil {
			return err
		}
		trainer.IntroVideo = path
		if thumb, err := utils.GenerateVideoThumbnail(path); err != nil {
			tc.logger.Printf("Video thumbnail failed for %s: %v", path, err)
		} else {
			trainer.IntroVideoThumb = thumb
		}
	}

	return nil
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file")
	}
	defer src.Close()
	return io.ReadAll(src)
}
