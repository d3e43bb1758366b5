package controllers

import (
	"net/http"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/example/goshop/internal/service"
)

// UserController 负责注册/登录与登出。
type UserController struct {
	userService *service.UserService
}

// NewUserController 构造函数，供路由层复用同一套逻辑。
func NewUserController(userSvc *service.UserService) *UserController {
	return &UserController{userService: userSvc}
}

// Register POST /api/register
func (c *UserController) Register(ctx iris.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
		return
	}
	if req.Username == "" || req.Password == "" {
		ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "用户名和密码不能为空"})
		return
	}
	u, err := c.userService.Register(ctx.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
		return
	}
	ctx.JSON(iris.Map{"code": 0, "data": iris.Map{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
	}})
}

// Login POST /api/login，成功后返回 JWT 并写 cookie 方便浏览器端使用
func (c *UserController) Login(ctx iris.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
		return
	}
	token, err := c.userService.Login(ctx.Request().Context(), req.Username, req.Password)
	if err != nil {
		ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": err.Error()})
		return
	}
	ctx.SetCookie(&http.Cookie{
		Name:  "token",
		Value: token,
		Path:  "/",
	})
	ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token}})
}

// Logout POST /api/logout，清理 cookie
func (c *UserController) Logout(ctx iris.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:    "token",
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
}
