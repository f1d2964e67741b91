package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fitflow/gymfit_backend/config"
	"github.com/fitflow/gymfit_backend/middleware"
	"github.com/fitflow/gymfit_backend/models"
	"github.com/fitflow/gymfit_backend/utils"
)

// isAdminRequest reports whether the request carries admin claims. Public
// routes have no JWT middleware, so absent claims mean a public caller.
func isAdminRequest(c echo.Context) bool {
	return middleware.ExtractUserType(c) == models.UserTypeAdmin
}

// BlogController manages blog posts for the marketing site
type BlogController struct {
	DB *mongo.Client
}

func NewBlogController(db *mongo.Client) *BlogController {
	return &BlogController{DB: db}
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL slug
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugCleaner.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// GetBlogs lists published posts, newest first
func (bc *BlogController) GetBlogs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"isPublished": true}
	if isAdminRequest(c) {
		filter = bson.M{}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection(bc.DB, "blogs").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch blog posts",
		})
	}
	defer cursor.Close(ctx)

	var blogs []models.Blog
	if err := cursor.All(ctx, &blogs); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode blog posts",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Blog posts retrieved",
		Data:    blogs,
	})
}

// GetBlog fetches one post by slug or hex id
func (bc *BlogController) GetBlog(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	param := c.Param("slug")
	filter := bson.M{"slug": param}
	if id, err := primitive.ObjectIDFromHex(param); err == nil {
		filter = bson.M{"_id": id}
	}

	var blog models.Blog
	err := config.GetCollection(bc.DB, "blogs").FindOne(ctx, filter).Decode(&blog)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Blog post not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch blog post",
		})
	}

	if !blog.IsPublished && !isAdminRequest(c) {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Blog post not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Blog post retrieved",
		Data:    blog,
	})
}

// CreateBlog adds a post. Accepts multipart with an optional cover image.
func (bc *BlogController) CreateBlog(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.BlogRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title and content are required",
		})
	}

	now := time.Now()
	blog := models.Blog{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Slug:        Slugify(req.Title),
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Author:      req.Author,
		Tags:        req.Tags,
		IsPublished: req.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if cover, err := saveUploadedImage(c, "coverImage", "blogs"); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	} else if cover != "" {
		blog.CoverImage = cover
	}

	if _, err := config.GetCollection(bc.DB, "blogs").InsertOne(ctx, blog); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Slug collision; suffix with the id tail to keep it unique.
			blog.Slug = fmt.Sprintf("%s-%s", blog.Slug, blog.ID.Hex()[18:])
			if _, err := config.GetCollection(bc.DB, "blogs").InsertOne(ctx, blog); err != nil {
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to create blog post",
				})
			}
		} else {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to create blog post",
			})
		}
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Blog post created",
		Data:    blog,
	})
}

// UpdateBlog modifies a post
func (bc *BlogController) UpdateBlog(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid blog ID",
		})
	}

	var req models.BlogRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title and content are required",
		})
	}

	update := bson.M{
		"title":       req.Title,
		"slug":        Slugify(req.Title),
		"content":     req.Content,
		"excerpt":     req.Excerpt,
		"author":      req.Author,
		"tags":        req.Tags,
		"isPublished": req.IsPublished,
		"updatedAt":   time.Now(),
	}

	if cover, err := saveUploadedImage(c, "coverImage", "blogs"); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	} else if cover != "" {
		update["coverImage"] = cover
	}

	result, err := config.GetCollection(bc.DB, "blogs").UpdateOne(ctx, bson.M{"_id": blogID}, bson.M{"$set": update})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update blog post",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Blog post not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Blog post updated",
	})
}

// DeleteBlog removes a post
func (bc *BlogController) DeleteBlog(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid blog ID",
		})
	}

	result, err := config.GetCollection(bc.DB, "blogs").DeleteOne(ctx, bson.M{"_id": blogID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete blog post",
		})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Blog post not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Blog post deleted",
	})
}

// saveUploadedImage stores a multipart image (if present), generates its
// thumbnail and returns the stored path. Empty string when the form has no
// file under the given name.
func saveUploadedImage(c echo.Context, field, subDir string) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}

	if err := utils.ValidateFileType(fileHeader.Filename, "image"); err != nil {
		return "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file")
	}

	path, err := utils.UploadFileToPath(data, fileHeader.Filename, "image", subDir)
	if err != nil {
		return "", err
	}

	// Thumbnail failures don't block the upload
	utils.GenerateImageThumbnail(path)

	return path, nil
}
