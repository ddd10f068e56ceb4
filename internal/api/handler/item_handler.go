package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/service"
	"github.com/d60-Lab/tierlist/pkg/apperr"
	"github.com/d60-Lab/tierlist/pkg/response"
)

type createItemRequest struct {
	Name   string  `json:"name" binding:"required"`
	RoomID *string `json:"roomId"`
}

type itemsResponse struct {
	Items []*model.Item `json:"items"`
}

type itemResponse struct {
	Item *model.Item `json:"item"`
}

func listItems(c *gin.Context, items []*model.Item, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*model.Item{}
	}
	response.Success(c, itemsResponse{Items: items})
}

// ListItems 搜索条目
// @Summary 搜索或列出最新条目（最多 20 条）
// @Tags 条目
// @Produce json
// @Param q query string false "名称子串"
// @Param roomId query string false "房间ID"
// @Success 200 {object} response.Response{data=itemsResponse}
// @Router /api/items [get]
func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.itemService.Search(c.Request.Context(), c.Query("q"), roomQuery(c))
	listItems(c, items, err)
}

// Leaderboard 排行榜
// @Summary 按得分排序的条目
// @Tags 条目
// @Produce json
// @Param order query string false "asc 或 desc" default(desc)
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param roomId query string false "房间ID"
// @Success 200 {object} response.Response{data=service.LeaderboardPage}
// @Router /api/items/leaderboard [get]
func (h *Handler) Leaderboard(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultLeaderboardLimit)))
	res, err := h.leaderboardService.Get(c.Request.Context(), service.LeaderboardQuery{
		Order:  c.DefaultQuery("order", service.OrderDesc),
		Page:   page,
		Limit:  limit,
		RoomID: roomQuery(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// MyItems 我的条目
// @Summary 当前用户创建的条目
// @Tags 条目
// @Produce json
// @Param roomId query string false "房间ID"
// @Param all query bool false "忽略房间过滤"
// @Success 200 {object} response.Response{data=itemsResponse}
// @Router /api/items/my [get]
func (h *Handler) MyItems(c *gin.Context) {
	all, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))
	items, err := h.itemService.ListMine(c.Request.Context(), currentUser(c), roomQuery(c), all)
	listItems(c, items, err)
}

// MyUnvoted 我未投票的条目
// @Summary 当前用户创建但尚未投票的条目
// @Tags 条目
// @Produce json
// @Param roomId query string false "房间ID"
// @Success 200 {object} response.Response{data=itemsResponse}
// @Router /api/items/my-unvoted [get]
func (h *Handler) MyUnvoted(c *gin.Context) {
	items, err := h.itemService.ListMyUnvoted(c.Request.Context(), currentUser(c), roomQuery(c))
	listItems(c, items, err)
}

// Recommendations 推荐
// @Summary 推荐待投票条目（自己的优先，再随机补足）
// @Tags 条目
// @Produce json
// @Param roomId query string false "房间ID"
// @Success 200 {object} response.Response{data=itemsResponse}
// @Router /api/items/recommendations [get]
func (h *Handler) Recommendations(c *gin.Context) {
	items, err := h.itemService.Recommendations(c.Request.Context(), currentUser(c), roomQuery(c))
	listItems(c, items, err)
}

// CreateItem 新建条目
// @Summary 新建条目，同一作用域内名称不区分大小写唯一
// @Tags 条目
// @Accept json
// @Produce json
// @Param request body createItemRequest true "条目"
// @Success 201 {object} response.Response{data=itemResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response{data=itemResponse}
// @Router /api/items [post]
func (h *Handler) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name is required")
		return
	}
	item, err := h.itemService.Create(c.Request.Context(), currentUser(c), req.Name, req.RoomID)
	if err != nil {
		response.Error(c, wrapConflictItem(err))
		return
	}
	response.Created(c, itemResponse{Item: item})
}

// DeleteItem 删除条目
// @Summary 删除自己创建的条目
// @Tags 条目
// @Produce json
// @Param id path string true "条目ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/items/{id} [delete]
func (h *Handler) DeleteItem(c *gin.Context) {
	if err := h.itemService.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// wrapConflictItem nests the existing item under "item" in the 409 body.
func wrapConflictItem(err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindConflict {
		return err
	}
	if it, ok := ae.Data.(*model.Item); ok {
		return apperr.Conflict(ae.Message, itemResponse{Item: it})
	}
	return err
}
