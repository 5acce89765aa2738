package controller

import (
	"audit_market_backend/internal/model"

	"github.com/gin-gonic/gin"
)

// deviceInfoFromRequest 每次调用读取一次设备快照；
// 时区和分辨率由前端通过自定义头传入
func deviceInfoFromRequest(ctx *gin.Context) model.DeviceInfo {
	return model.DeviceInfo{
		UserAgent:        ctx.Request.UserAgent(),
		Locale:           ctx.GetHeader("Accept-Language"),
		Timezone:         ctx.GetHeader("X-Timezone"),
		ScreenResolution: ctx.GetHeader("X-Screen-Resolution"),
	}
}
