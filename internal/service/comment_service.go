package service

import (
	"errors"
	"strings"

	"reelgo/internal/api/dto"
	"reelgo/internal/model"
	"reelgo/internal/repository"
	"reelgo/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound     = errors.New("评论不存在")
	ErrCommentNoPermission = errors.New("没有权限操作该评论")
	ErrCommentEmpty        = errors.New("评论内容不能为空")
	ErrCommentTooLong      = errors.New("评论内容过长")
	ErrParentNotFound      = errors.New("父评论不存在")
	ErrParentVideoMismatch = errors.New("父评论不属于该视频")
)

// 评论内容最大长度（字符数）
const maxCommentLength = 500

type CommentService struct {
	commentRepo *repository.CommentRepository
	videoRepo   *repository.VideoRepository
}

func NewCommentService(commentRepo *repository.CommentRepository, videoRepo *repository.VideoRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, videoRepo: videoRepo}
}

// Create 发表评论
// 对回复的回复在写入时拉平：parent_id 恒指向顶层评论
func (s *CommentService) Create(userID, videoID int64, req *dto.CommentCreateRequest) (*dto.CommentInfo, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrCommentEmpty
	}
	if len([]rune(content)) > maxCommentLength {
		return nil, ErrCommentTooLong
	}

	if _, err := s.videoRepo.GetByID(videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	parentID := req.ParentID
	if parentID != nil {
		parent, err := s.commentRepo.GetByID(*parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.VideoID != videoID {
			return nil, ErrParentVideoMismatch
		}
		// 回复的是一条回复，挂到它所在的顶层评论下
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
	}

	comment := &model.Comment{
		UserID:   userID,
		VideoID:  videoID,
		Content:  content,
		ParentID: parentID,
	}

	if err := s.commentRepo.CreateAndCount(comment); err != nil {
		return nil, err
	}

	return toCommentInfo(comment), nil
}

// Update 更新评论内容
func (s *CommentService) Update(commentID, userID int64, req *dto.CommentUpdateRequest) (*dto.CommentInfo, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrCommentEmpty
	}
	if len([]rune(content)) > maxCommentLength {
		return nil, ErrCommentTooLong
	}

	if err := s.commentRepo.Update(commentID, userID, content); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNoPermission
		}
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}

	return toCommentInfo(comment), nil
}

// Delete 删除评论，顶层评论连带其全部回复，返回删除的评论数
func (s *CommentService) Delete(commentID, userID int64) (int64, error) {
	if _, err := s.commentRepo.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCommentNotFound
		}
		return 0, err
	}

	removed, err := s.commentRepo.DeleteCascade(commentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCommentNoPermission
		}
		return 0, err
	}

	return removed, nil
}

// Like 评论点赞
func (s *CommentService) Like(commentID int64) (*dto.CommentInfo, error) {
	if err := s.commentRepo.IncrementLikeCount(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}
	return toCommentInfo(comment), nil
}

// Tree 构建视频的两级评论树
// 顶层评论按时间倒序，回复挂在所属顶层评论下按时间正序
// 父评论已不存在的回复直接丢弃（正常情况下级联删除不会留下孤儿）
func (s *CommentService) Tree(videoID int64) (*dto.CommentTreeData, error) {
	if _, err := s.videoRepo.GetByID(videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	comments, err := s.commentRepo.ListAllByVideoWithUser(videoID)
	if err != nil {
		return nil, err
	}

	// 第一遍：顶层评论，输入按时间升序
	topByID := make(map[int64]*dto.CommentInfo)
	topOrder := make([]*dto.CommentInfo, 0)
	for i := range comments {
		if comments[i].ParentID != nil {
			continue
		}
		info := toCommentInfo(&comments[i])
		fillCommentAuthor(info, &comments[i].User)
		info.Replies = make([]dto.CommentInfo, 0)
		topByID[comments[i].ID] = info
		topOrder = append(topOrder, info)
	}

	// 第二遍：回复挂载
	total := int64(len(topOrder))
	for i := range comments {
		if comments[i].ParentID == nil {
			continue
		}
		parent, ok := topByID[*comments[i].ParentID]
		if !ok {
			logger.Warn("Orphan comment reply dropped",
				zap.Int64("comment_id", comments[i].ID),
				zap.Int64("parent_id", *comments[i].ParentID),
				zap.Int64("video_id", videoID),
			)
			continue
		}
		info := toCommentInfo(&comments[i])
		fillCommentAuthor(info, &comments[i].User)
		parent.Replies = append(parent.Replies, *info)
		total++
	}

	// 顶层倒序输出：最新的在前
	items := make([]dto.CommentInfo, 0, len(topOrder))
	for i := len(topOrder) - 1; i >= 0; i-- {
		topOrder[i].RepliesCount = int64(len(topOrder[i].Replies))
		items = append(items, *topOrder[i])
	}

	return &dto.CommentTreeData{
		Comments: items,
		Total:    total,
	}, nil
}

// ListReplies 分页获取顶层评论下的回复，按时间正序
// 回复本身没有下级，对回复调用返回空页
func (s *CommentService) ListReplies(commentID int64, page, pageSize int) (*dto.CommentListData, error) {
	if _, err := s.commentRepo.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	skip := (page - 1) * pageSize
	comments, total, err := s.commentRepo.ListReplies(commentID, skip, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CommentInfo, 0, len(comments))
	for i := range comments {
		info := toCommentInfo(&comments[i])
		fillCommentAuthor(info, &comments[i].User)
		items = append(items, *info)
	}

	return &dto.CommentListData{
		Comments: items,
		PageInfo: dto.NewPageInfo(total, page, pageSize),
	}, nil
}

// ListByUser 获取用户的评论列表
func (s *CommentService) ListByUser(userID int64, page, pageSize int) (*dto.CommentListData, error) {
	skip := (page - 1) * pageSize
	comments, total, err := s.commentRepo.ListByUser(userID, skip, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CommentInfo, 0, len(comments))
	for i := range comments {
		info := toCommentInfo(&comments[i])
		if comments[i].Video.ID != 0 {
			info.VideoTitle = &comments[i].Video.Title
		}
		items = append(items, *info)
	}

	return &dto.CommentListData{
		Comments: items,
		PageInfo: dto.NewPageInfo(total, page, pageSize),
	}, nil
}

// fillCommentAuthor 填充评论作者信息，作者已注销时用占位作者
func fillCommentAuthor(info *dto.CommentInfo, user *model.User) {
	if user == nil || user.ID == 0 || user.IsDelete != 0 {
		info.UserID = 0
		unknown := "unknown"
		info.Username = &unknown
		info.Name = nil
		info.Avatar = nil
		return
	}
	info.Username = &user.UserName
	info.Name = user.Name
	info.Avatar = user.Avatar
}

func toCommentInfo(c *model.Comment) *dto.CommentInfo {
	return &dto.CommentInfo{
		ID:        c.ID,
		UserID:    c.UserID,
		VideoID:   c.VideoID,
		Content:   c.Content,
		ParentID:  c.ParentID,
		LikeCount: c.LikeCount,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
