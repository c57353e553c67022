package user

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// Resource types shown as badges in the library.
const (
	ResourceBook    = "Book"
	ResourceVideo   = "Video"
	ResourceTool    = "Tool"
	ResourceCourse  = "Course"
	ResourceArticle = "Article"
)

type Resource struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type ResourceCategory struct {
	Key       string     `json:"key"`
	Title     string     `json:"title"`
	Resources []Resource `json:"resources"`
}

type ResourceLibraryResponse struct {
	Categories []ResourceCategory `json:"categories"`
}

/* =================================================================================
								STATIC CONTENT
=================================================================================*/

var resourceCategories = []ResourceCategory{
	{
		Key:   "personal-development",
		Title: "Personal Development",
		Resources: []Resource{
			{"The 7 Habits of Highly Effective People", ResourceBook, "Transform your mindset and achieve lasting success"},
			{"Goal Setting Workshop", ResourceVideo, "Learn how to set and achieve meaningful goals"},
			{"Daily Reflection Journal", ResourceTool, "Track your progress and insights"},
		},
	},
	{
		Key:   "career-growth",
		Title: "Career Growth",
		Resources: []Resource{
			{"Career Transition Guide", ResourceArticle, "Navigate career changes with confidence"},
			{"Networking Strategies", ResourceVideo, "Build meaningful professional relationships"},
			{"Skills Assessment Tool", ResourceTool, "Identify your strengths and growth areas"},
		},
	},
	{
		Key:   "relationships-social",
		Title: "Relationships & Social",
		Resources: []Resource{
			{"Communication Masterclass", ResourceCourse, "Improve your interpersonal skills"},
			{"Building Healthy Boundaries", ResourceArticle, "Learn to protect your energy and time"},
			{"Relationship Assessment", ResourceTool, "Evaluate your key relationships"},
		},
	},
	{
		Key:   "learning-education",
		Title: "Learning & Education",
		Resources: []Resource{
			{"Learning How to Learn", ResourceCourse, "Master effective learning techniques"},
			{"Critical Thinking Skills", ResourceBook, "Enhance your decision-making abilities"},
			{"Study Planner", ResourceTool, "Organize your learning journey"},
		},
	},
}

/* =================================================================================
								RESOURCE HANDLERS
=================================================================================*/

// GetResourcesHandler handles GET /resources. ?type= narrows every category
// to one resource type; categories left empty are dropped.
func GetResourcesHandler(c echo.Context) error {
	resourceType := c.QueryParam("type")
	if resourceType == "" {
		return c.JSON(http.StatusOK, ResourceLibraryResponse{Categories: resourceCategories})
	}

	categories := make([]ResourceCategory, 0, len(resourceCategories))
	for _, category := range resourceCategories {
		if filtered := filterResources(category, resourceType); len(filtered.Resources) > 0 {
			categories = append(categories, filtered)
		}
	}
	return c.JSON(http.StatusOK, ResourceLibraryResponse{Categories: categories})
}

// GetResourceCategoryHandler handles GET /resources/:category.
func GetResourceCategoryHandler(c echo.Context) error {
	key := c.Param("category")
	for _, category := range resourceCategories {
		if category.Key == key {
			return c.JSON(http.StatusOK, category)
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"error": "Unknown resource category"})
}

func filterResources(category ResourceCategory, resourceType string) ResourceCategory {
	kept := make([]Resource, 0, len(category.Resources))
	for _, r := range category.Resources {
		if r.Type == resourceType {
			kept = append(kept, r)
		}
	}
	category.Resources = kept
	return category
}
