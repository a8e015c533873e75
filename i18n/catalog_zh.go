package i18n

var zhCatalog = Catalog{
	NavHome:     "首页",
	NavDownload: "下载",
	NavResearch: "研究",
	NavProfile:  "个人中心",
	NavAdmin:    "管理后台",
	NavLogin:    "登录",
	NavLogout:   "退出登录",
	NavLanguage: "语言",

	FooterPrivacy: "隐私政策",
	FooterTerms:   "服务条款",
	FooterCookie:  "Cookie 政策",

	HomeTitle:   "安全、稳定、极速的网络加速",
	HomeTagline: "一键连接全球节点，随时随地畅享自由网络",
	HomeCTA:     "立即下载",

	DownloadTitle:          "下载客户端",
	DownloadVersion:        "版本",
	DownloadSize:           "大小",
	DownloadButton:         "下载",
	DownloadChangelog:      "更新日志",
	DownloadFallbackNotice: "暂时无法获取最新版本信息，显示的是默认版本",

	AuthTitleLogin:       "登录",
	AuthTitleRegister:    "注册",
	AuthSwitchToRegister: "没有账号？立即注册",
	AuthSwitchToLogin:    "已有账号？立即登录",
	AuthMethodPassword:   "密码登录",
	AuthMethodPhoneOTP:   "手机验证码",
	AuthMethodEmailOTP:   "邮箱验证码",
	AuthMethodPhone:      "手机注册",
	AuthMethodEmail:      "邮箱注册",
	AuthFieldEmail:       "邮箱",
	AuthFieldPhone:       "手机号",
	AuthFieldPassword:    "密码",
	AuthFieldUsername:    "用户名",
	AuthFieldCode:        "验证码",
	AuthSubmit:           "登录",
	AuthSendCode:         "发送验证码",
	AuthVerify:           "验证",
	AuthResend:           "重新发送",
	AuthResendIn:         "%d 秒后重新发送",
	AuthBack:             "返回",
	AuthForgotPassword:   "忘记密码？",

	ResearchTitle:       "研究",
	ResearchEmpty:       "暂无文章",
	ResearchViews:       "阅读",
	ResearchPublishedAt: "发布于",

	ProfileTitle:               "个人中心",
	ProfileSubscriptionActive:  "订阅有效期至 %s",
	ProfileSubscriptionExpired: "订阅已过期",
	ProfileSubscriptionNone:    "暂无订阅",
	ProfilePurchases:           "购买记录",
	ProfilePurchasesEmpty:      "暂无购买记录",
	ProfileUsername:            "用户名",
	ProfileBio:                 "个人简介",
	ProfileSave:                "保存",
	ProfileSaved:               "资料已保存",
	ProfileNewPassword:         "新密码",
	ProfileChangePassword:      "修改密码",
	ProfilePasswordChanged:     "密码已修改",
	ProfileBuy:                 "购买订阅",

	AdminTitle:           "文章管理",
	AdminNewArticle:      "新建文章",
	AdminFilterAll:       "全部",
	AdminFilterPublished: "已发布",
	AdminFilterDrafts:    "草稿",
	AdminFieldTitle:      "标题",
	AdminFieldSlug:       "URL别名",
	AdminFieldContent:    "内容",
	AdminFieldExcerpt:    "摘要",
	AdminFieldCategory:   "分类",
	AdminFieldCover:      "封面图片",
	AdminFieldPublished:  "立即发布",
	AdminCreate:          "创建",
	AdminPublish:         "发布",
	AdminUnpublish:       "撤回",
	AdminDelete:          "删除",
	AdminUploadCover:     "上传封面",
	AdminEmpty:           "暂无文章",
	AdminSaved:           "文章已保存",

	ResetTitle:       "重置密码",
	ResetRequest:     "发送重置邮件",
	ResetRequestSent: "重置邮件已发送，请查收",
	ResetNewPassword: "新密码",
	ResetSave:        "保存新密码",
	ResetDone:        "密码已重置，请重新登录",

	PrivacyTitle: "隐私政策",
	TermsTitle:   "服务条款",
	CookieTitle:  "Cookie 政策",

	NotFoundTitle: "页面不存在",
	NotFoundBody:  "您访问的页面不存在或已被移除",
	NotFoundBack:  "返回首页",

	ErrorGeneric: "操作失败，请稍后重试",
}

var zhTWCatalog = Catalog{
	NavHome:     "首頁",
	NavDownload: "下載",
	NavResearch: "研究",
	NavProfile:  "個人中心",
	NavAdmin:    "管理後台",
	NavLogin:    "登入",
	NavLogout:   "登出",
	NavLanguage: "語言",

	FooterPrivacy: "隱私政策",
	FooterTerms:   "服務條款",
	FooterCookie:  "Cookie 政策",

	HomeTitle:   "安全、穩定、極速的網路加速",
	HomeTagline: "一鍵連接全球節點，隨時隨地暢享自由網路",
	HomeCTA:     "立即下載",

	DownloadTitle:          "下載用戶端",
	DownloadVersion:        "版本",
	DownloadSize:           "大小",
	DownloadButton:         "下載",
	DownloadChangelog:      "更新日誌",
	DownloadFallbackNotice: "暫時無法取得最新版本資訊，顯示的是預設版本",

	AuthTitleLogin:       "登入",
	AuthTitleRegister:    "註冊",
	AuthSwitchToRegister: "沒有帳號？立即註冊",
	AuthSwitchToLogin:    "已有帳號？立即登入",
	AuthMethodPassword:   "密碼登入",
	AuthMethodPhoneOTP:   "手機驗證碼",
	AuthMethodEmailOTP:   "信箱驗證碼",
	AuthMethodPhone:      "手機註冊",
	AuthMethodEmail:      "信箱註冊",
	AuthFieldEmail:       "信箱",
	AuthFieldPhone:       "手機號碼",
	AuthFieldPassword:    "密碼",
	AuthFieldUsername:    "使用者名稱",
	AuthFieldCode:        "驗證碼",
	AuthSubmit:           "登入",
	AuthSendCode:         "發送驗證碼",
	AuthVerify:           "驗證",
	AuthResend:           "重新發送",
	AuthResendIn:         "%d 秒後重新發送",
	AuthBack:             "返回",
	AuthForgotPassword:   "忘記密碼？",

	ResearchTitle:       "研究",
	ResearchEmpty:       "暫無文章",
	ResearchViews:       "閱讀",
	ResearchPublishedAt: "發佈於",

	ProfileTitle:               "個人中心",
	ProfileSubscriptionActive:  "訂閱有效期至 %s",
	ProfileSubscriptionExpired: "訂閱已過期",
	ProfileSubscriptionNone:    "尚無訂閱",
	ProfilePurchases:           "購買紀錄",
	ProfilePurchasesEmpty:      "尚無購買紀錄",
	ProfileUsername:            "使用者名稱",
	ProfileBio:                 "個人簡介",
	ProfileSave:                "儲存",
	ProfileSaved:               "資料已儲存",
	ProfileNewPassword:         "新密碼",
	ProfileChangePassword:      "修改密碼",
	ProfilePasswordChanged:     "密碼已修改",
	ProfileBuy:                 "購買訂閱",

	AdminTitle:           "文章管理",
	AdminNewArticle:      "新增文章",
	AdminFilterAll:       "全部",
	AdminFilterPublished: "已發佈",
	AdminFilterDrafts:    "草稿",
	AdminFieldTitle:      "標題",
	AdminFieldSlug:       "URL 別名",
	AdminFieldContent:    "內容",
	AdminFieldExcerpt:    "摘要",
	AdminFieldCategory:   "分類",
	AdminFieldCover:      "封面圖片",
	AdminFieldPublished:  "立即發佈",
	AdminCreate:          "建立",
	AdminPublish:         "發佈",
	AdminUnpublish:       "撤回",
	AdminDelete:          "刪除",
	AdminUploadCover:     "上傳封面",
	AdminEmpty:           "暫無文章",
	AdminSaved:           "文章已儲存",

	ResetTitle:       "重設密碼",
	ResetRequest:     "發送重設郵件",
	ResetRequestSent: "重設郵件已發送，請查收",
	ResetNewPassword: "新密碼",
	ResetSave:        "儲存新密碼",
	ResetDone:        "密碼已重設，請重新登入",

	PrivacyTitle: "隱私政策",
	TermsTitle:   "服務條款",
	CookieTitle:  "Cookie 政策",

	NotFoundTitle: "頁面不存在",
	NotFoundBody:  "您造訪的頁面不存在或已被移除",
	NotFoundBack:  "返回首頁",

	ErrorGeneric: "操作失敗，請稍後再試",
}
