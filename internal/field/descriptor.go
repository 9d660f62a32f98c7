package field

const (
	objectDesc      = "Ljava/lang/Object;"
	stringArrayDesc = "[Ljava/lang/String;"
	objectArrayDesc = "[Ljava/lang/Object;"
)

// ParamDescriptor 返回生成调用的参数描述符部分（不含返回类型）。
//
//	hasStringParams forwardCtorParams  非静态                                              静态
//	no              no                 (Ljava/lang/Object;)                                ()
//	no              yes                (Ljava/lang/Object;[Ljava/lang/Object;)             ()
//	yes             no                 (Ljava/lang/Object;[Ljava/lang/String;)             ([Ljava/lang/String;)
//	yes             yes                (Ljava/lang/Object;[Ljava/lang/String;[Ljava/lang/Object;) ([Ljava/lang/String;)
//
// 静态上下文没有构造方法参数可转发，forwardCtorParams 被忽略。
func ParamDescriptor(hasStringParams, forwardCtorParams, isStatic bool) string {
	desc := "("
	if !isStatic {
		desc += objectDesc
	}
	if hasStringParams {
		desc += stringArrayDesc
	}
	if forwardCtorParams && !isStatic {
		desc += objectArrayDesc
	}
	return desc + ")"
}
