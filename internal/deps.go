package internal

import (
	"github.com/jvincentbasto/my-space/config"
	"github.com/jvincentbasto/my-space/internal/cache"
	"github.com/jvincentbasto/my-space/internal/service"
	"gorm.io/gorm"
)

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Users  *service.UserService
	Files  *service.FileService
	Views  *cache.Views
}
