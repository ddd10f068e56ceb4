package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/internal/service"
	"github.com/d60-Lab/tierlist/pkg/response"
)

type createRoomRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type updateRoomRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type roomResponse struct {
	Room *model.Room `json:"room"`
}

type roomDetailResponse struct {
	Room *repository.RoomDetail `json:"room"`
}

type roomsResponse struct {
	Rooms []*model.Room `json:"rooms"`
}

// CreateRoom 创建房间
// @Summary 创建房间并生成 8 位分享码
// @Tags 房间
// @Accept json
// @Produce json
// @Param request body createRoomRequest true "房间"
// @Success 201 {object} response.Response{data=roomResponse}
// @Failure 400 {object} response.Response
// @Router /api/rooms [post]
func (h *Handler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name is required")
		return
	}
	room, err := h.roomService.Create(c.Request.Context(), currentUser(c), req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, roomResponse{Room: room})
}

// MyRooms 我的房间
// @Summary 当前用户创建的房间
// @Tags 房间
// @Produce json
// @Success 200 {object} response.Response{data=roomsResponse}
// @Router /api/rooms/my [get]
func (h *Handler) MyRooms(c *gin.Context) {
	rooms, err := h.roomService.ListMine(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if rooms == nil {
		rooms = []*model.Room{}
	}
	response.Success(c, roomsResponse{Rooms: rooms})
}

// GetRoom 房间详情
// @Summary 按分享码查询房间
// @Tags 房间
// @Produce json
// @Param hash path string true "分享码"
// @Success 200 {object} response.Response{data=roomDetailResponse}
// @Failure 404 {object} response.Response
// @Router /api/rooms/{hash} [get]
func (h *Handler) GetRoom(c *gin.Context) {
	room, err := h.roomService.Get(c.Request.Context(), c.Param("hash"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, roomDetailResponse{Room: room})
}

// UpdateRoom 修改房间
// @Summary 修改房间名称或描述（仅创建者）
// @Tags 房间
// @Accept json
// @Produce json
// @Param hash path string true "分享码"
// @Param request body updateRoomRequest true "修改内容"
// @Success 200 {object} response.Response{data=roomResponse}
// @Failure 403 {object} response.Response
// @Router /api/rooms/{hash} [patch]
func (h *Handler) UpdateRoom(c *gin.Context) {
	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	room, err := h.roomService.Update(c.Request.Context(), currentUser(c), c.Param("hash"), service.RoomUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, roomResponse{Room: room})
}

// DeleteRoom 删除房间
// @Summary 删除房间及其条目和投票（仅创建者）
// @Tags 房间
// @Produce json
// @Param hash path string true "分享码"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/rooms/{hash} [delete]
func (h *Handler) DeleteRoom(c *gin.Context) {
	if err := h.roomService.Delete(c.Request.Context(), currentUser(c), c.Param("hash")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
