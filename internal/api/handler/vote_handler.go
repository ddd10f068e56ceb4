package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/pkg/response"
)

type voteRequest struct {
	ItemID string  `json:"itemId" binding:"required"`
	Tier   string  `json:"tier" binding:"required,tier"`
	RoomID *string `json:"roomId"`
}

type voteResponse struct {
	Vote *model.Vote `json:"vote"`
}

type votesResponse struct {
	Votes []*model.Vote `json:"votes"`
}

// UpsertVote 投票（存在则覆盖）
// @Summary 为条目投票；同一用户/条目/房间只保留一票
// @Tags 投票
// @Accept json
// @Produce json
// @Param request body voteRequest true "投票"
// @Success 200 {object} response.Response{data=voteResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/votes [post]
func (h *Handler) UpsertVote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "itemId and a tier of S, A, B, C, D or IGNORED are required")
		return
	}
	vote, err := h.voteService.Upsert(c.Request.Context(), currentUser(c), req.ItemID, req.RoomID, req.Tier)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, voteResponse{Vote: vote})
}

// DeleteVote 撤销投票
// @Summary 删除当前用户对条目的投票
// @Tags 投票
// @Produce json
// @Param itemId path string true "条目ID"
// @Param roomId query string false "房间ID"
// @Success 200 {object} response.Response
// @Router /api/votes/{itemId} [delete]
func (h *Handler) DeleteVote(c *gin.Context) {
	n, err := h.voteService.Remove(c.Request.Context(), currentUser(c), c.Param("itemId"), roomQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": n})
}

// VoteStats 投票分布
// @Summary 条目各档位票数
// @Tags 投票
// @Produce json
// @Param itemId path string true "条目ID"
// @Param roomId query string false "房间ID"
// @Success 200 {object} response.Response{data=service.VoteStats}
// @Router /api/votes/stats/{itemId} [get]
func (h *Handler) VoteStats(c *gin.Context) {
	stats, err := h.voteService.Stats(c.Request.Context(), c.Param("itemId"), roomQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// MyVotes 我的投票
// @Summary 当前用户的投票（不含 IGNORED）
// @Tags 投票
// @Produce json
// @Param roomId query string false "房间ID"
// @Success 200 {object} response.Response{data=votesResponse}
// @Router /api/votes/my [get]
func (h *Handler) MyVotes(c *gin.Context) {
	votes, err := h.voteService.MyVotes(c.Request.Context(), currentUser(c), roomQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if votes == nil {
		votes = []*model.Vote{}
	}
	response.Success(c, votesResponse{Votes: votes})
}

// MyIgnored 我忽略的条目
// @Summary 当前用户标记为 IGNORED 的条目
// @Tags 投票
// @Produce json
// @Param roomId query string false "房间ID"
// @Success 200 {object} response.Response{data=itemsResponse}
// @Router /api/votes/ignored [get]
func (h *Handler) MyIgnored(c *gin.Context) {
	items, err := h.voteService.MyIgnored(c.Request.Context(), currentUser(c), roomQuery(c))
	listItems(c, items, err)
}
