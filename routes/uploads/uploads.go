package uploads

import (
	"mindmemos/controllers"
	"mindmemos/pkg/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register serves stored images publicly and accepts new ones from
// authenticated users.
func Register(r *gin.Engine, db *gorm.DB) {
	r.Static("/uploads", config.UploadDir)
}

func RegisterProtected(g *gin.RouterGroup, db *gorm.DB) {
	g.POST("/uploads/images", controllers.UploadImage())
}
